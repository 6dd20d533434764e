package account

import (
	"encoding/json"
	"sort"
	"strings"

	"landmarket/server/internal/apperr"
	"landmarket/server/internal/auth"
	"landmarket/server/internal/models"
)

// Patch is a partial profile update keyed by JSON field name.
type Patch map[string]json.RawMessage

type setter func(u *models.User, raw json.RawMessage) error

var setters = map[string]struct {
	column string
	apply  setter
}{
	"name": {"name", func(u *models.User, raw json.RawMessage) error {
		v, err := decodeString("name", raw)
		if err != nil {
			return err
		}
		u.Name, err = validName(v)
		return err
	}},
	"email": {"email", func(u *models.User, raw json.RawMessage) error {
		v, err := decodeString("email", raw)
		if err != nil {
			return err
		}
		u.Email, err = validEmail(v)
		return err
	}},
	"phone": {"phone", func(u *models.User, raw json.RawMessage) error {
		v, err := decodeString("phone", raw)
		if err != nil {
			return err
		}
		u.Phone, err = validPhone(v)
		return err
	}},
	"county": {"county", func(u *models.User, raw json.RawMessage) error {
		v, err := decodeString("county", raw)
		if err != nil {
			return err
		}
		u.County, err = optionalCounty(v)
		return err
	}},
	"constituency": {"constituency", func(u *models.User, raw json.RawMessage) error {
		v, err := decodeString("constituency", raw)
		u.Constituency = strings.TrimSpace(v)
		return err
	}},
	"password": {"password_hash", func(u *models.User, raw json.RawMessage) error {
		v, err := decodeString("password", raw)
		if err != nil {
			return err
		}
		if err := auth.ValidatePassword(v); err != nil {
			return err
		}
		u.PasswordHash, err = auth.HashPassword(v)
		return err
	}},
	"role": {"role", func(u *models.User, raw json.RawMessage) error {
		v, err := decodeString("role", raw)
		if err != nil {
			return err
		}
		role := models.Role(strings.ToLower(v))
		if !role.Valid() {
			return apperr.Validation("role", "role must be buyer, seller or admin")
		}
		u.Role = role
		return nil
	}},
}

// readOnly fields are accepted only when unchanged. Account state moves
// through approve and suspend, never through a profile update.
var readOnly = map[string]func(u *models.User) string{
	"id":           func(u *models.User) string { return u.ID },
	"accountState": func(u *models.User) string { return string(u.AccountState) },
}

func (patch Patch) apply(u *models.User) ([]string, error) {
	if len(patch) == 0 {
		return nil, apperr.Validation("", "update must include at least one field")
	}

	names := make([]string, 0, len(patch))
	for name := range patch {
		names = append(names, name)
	}
	sort.Strings(names)

	var columns []string
	for _, name := range names {
		raw := patch[name]
		if current, ok := readOnly[name]; ok {
			var v string
			if err := json.Unmarshal(raw, &v); err != nil || v != current(u) {
				return nil, apperr.Validation(name, "%s cannot be changed here", name)
			}
			continue
		}
		s, ok := setters[name]
		if !ok {
			return nil, apperr.Validation(name, "unknown field %s", name)
		}
		if err := s.apply(u, raw); err != nil {
			return nil, err
		}
		columns = append(columns, s.column)
	}
	return columns, nil
}

func decodeString(field string, raw json.RawMessage) (string, error) {
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", apperr.Validation(field, "%s must be a string", field)
	}
	return v, nil
}
