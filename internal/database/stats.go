package database

import (
	"context"

	"golang.org/x/sync/errgroup"

	"landmarket/server/internal/models"
)

// PublicStats counts users and publicly listed properties.
func (d *Database) PublicStats(ctx context.Context) (models.PropertyStats, error) {
	var stats models.PropertyStats
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return d.db.WithContext(ctx).Model(&models.User{}).Count(&stats.Users).Error
	})
	g.Go(func() error {
		return d.db.WithContext(ctx).Model(&models.Property{}).
			Scopes(PubliclyListable).
			Count(&stats.Listings).Error
	})
	if err := g.Wait(); err != nil {
		return models.PropertyStats{}, translate(err, "stats")
	}
	return stats, nil
}

func (d *Database) AdminStats(ctx context.Context) (models.AdminStats, error) {
	var stats models.AdminStats
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return d.db.WithContext(ctx).Model(&models.User{}).Count(&stats.Users).Error
	})
	g.Go(func() error {
		return d.db.WithContext(ctx).Model(&models.Property{}).Count(&stats.Properties).Error
	})
	g.Go(func() error {
		return d.db.WithContext(ctx).Model(&models.Property{}).
			Where("moderation_state = ?", models.ModerationPending).
			Count(&stats.Pending).Error
	})
	g.Go(func() error {
		return d.db.WithContext(ctx).Model(&models.Inquiry{}).Count(&stats.Inquiries).Error
	})
	if err := g.Wait(); err != nil {
		return models.AdminStats{}, translate(err, "stats")
	}
	return stats, nil
}
