package config

import "strings"

// County is one of Kenya's 47 counties with its constituencies.
type County struct {
	Name           string   `json:"name"`
	Constituencies []string `json:"constituencies"`
}

// Counties is the registry listings are validated against. Constituency
// lists are informational; only the county name is enforced.
var Counties = []County{
	{Name: "Mombasa", Constituencies: []string{"Changamwe", "Jomvu", "Kisauni", "Likoni", "Mvita", "Nyali"}},
	{Name: "Kwale", Constituencies: []string{"Matuga", "Msambweni", "Kinango", "Lunga Lunga"}},
	{Name: "Kilifi", Constituencies: []string{"Ganze", "Rabai", "Kaloleni", "Kilifi North", "Kilifi South", "Magarini", "Malindi"}},
	{Name: "Tana River", Constituencies: []string{"Garsen", "Galole", "Bura"}},
	{Name: "Lamu", Constituencies: []string{"Lamu East", "Lamu West"}},
	{Name: "Taita-Taveta", Constituencies: []string{"Wundanyi", "Mwatate", "Voi", "Taveta"}},
	{Name: "Garissa", Constituencies: []string{"Garissa Township", "Dujis", "Balambala", "Ijara", "Lagdera", "Fafi"}},
	{Name: "Wajir", Constituencies: []string{"Wajir East", "Wajir North", "Wajir South", "Wajir West", "Tarbaj", "Eldas"}},
	{Name: "Mandera", Constituencies: []string{"Mandera East", "Mandera North", "Mandera South", "Mandera West", "Banissa", "Lafey"}},
	{Name: "Marsabit", Constituencies: []string{"Moyale", "North Horr", "Saku", "Laisamis"}},
	{Name: "Isiolo", Constituencies: []string{"Isiolo North", "Isiolo South"}},
	{Name: "Meru", Constituencies: []string{"Igembe North", "Igembe Central", "Igembe South", "Tigania West", "Tigania East", "Buuri", "Central Imenti", "North Imenti", "South Imenti"}},
	{Name: "Tharaka-Nithi", Constituencies: []string{"Maara", "Chuka/Igambang'ombe", "Tharaka"}},
	{Name: "Embu", Constituencies: []string{"Manyatta", "Runyenjes", "Mbeere North", "Mbeere South"}},
	{Name: "Kitui", Constituencies: []string{"Kitui East", "Kitui Central", "Kitui West", "Kitui South", "Kitui Rural", "Mwingi North", "Mwingi Central", "Mwingi West"}},
	{Name: "Machakos", Constituencies: []string{"Machakos Town", "Masinga", "Yatta", "Kangundo", "Matungulu", "Kathiani", "Mavoko", "Mwala"}},
	{Name: "Makueni", Constituencies: []string{"Kibwezi East", "Kibwezi West", "Kilome", "Kaiti", "Makueni", "Mbooni"}},
	{Name: "Nyandarua", Constituencies: []string{"Kinangop", "Ol Jorok", "Ol Kalou", "Ndaragwa", "Kipipiri"}},
	{Name: "Nyeri", Constituencies: []string{"Tetu", "Kieni", "Mathira", "Mukurweini", "Othaya", "Nyeri Town"}},
	{Name: "Kirinyaga", Constituencies: []string{"Gichugu", "Kirinyaga Central", "Mwea", "Ndia"}},
	{Name: "Murang'a", Constituencies: []string{"Kangema", "Kiharu", "Maragwa", "Kandara", "Mathioya", "Kigumo", "Gatanga"}},
	{Name: "Kiambu", Constituencies: []string{"Gatundu North", "Gatundu South", "Thika Town", "Ruiru", "Juja", "Githunguri", "Kiambaa", "Kiambu", "Kabete", "Kikuyu", "Lari", "Limuru"}},
	{Name: "Turkana", Constituencies: []string{"Turkana North", "Turkana South", "Turkana Central", "Turkana East", "Turkana West", "Loima"}},
	{Name: "West Pokot", Constituencies: []string{"Kapenguria", "Kacheliba", "Pokot South", "Sigor"}},
	{Name: "Samburu", Constituencies: []string{"Samburu North", "Samburu East", "Samburu West"}},
	{Name: "Trans-Nzoia", Constituencies: []string{"Kiminini", "Cherangany", "Kwanza", "Saboti", "Endebess"}},
	{Name: "Uasin Gishu", Constituencies: []string{"Soy", "Turbo", "Moiben", "Ainabkoi", "Kapseret", "Kesses"}},
	{Name: "Elgeyo-Marakwet", Constituencies: []string{"Keiyo North", "Keiyo South", "Marakwet East", "Marakwet West"}},
	{Name: "Nandi", Constituencies: []string{"Aldai", "Chesumei", "Emgwen", "Mosop", "Tinderet", "Nandi Hills"}},
	{Name: "Baringo", Constituencies: []string{"Baringo Central", "Baringo North", "Baringo South", "Mogotio", "Eldama Ravine", "Tiaty"}},
	{Name: "Laikipia", Constituencies: []string{"Laikipia North", "Laikipia East", "Laikipia West"}},
	{Name: "Nakuru", Constituencies: []string{"Nakuru Town West", "Nakuru Town East", "Bahati", "Njoro", "Molo", "Rongai", "Gilgil", "Naivasha", "Subukia", "Kuresoi North", "Kuresoi South"}},
	{Name: "Narok", Constituencies: []string{"Narok East", "Narok North", "Narok South", "Narok West", "Emurua Dikirr", "Kilgoris"}},
	{Name: "Kajiado", Constituencies: []string{"Kajiado North", "Kajiado Central", "Kajiado East", "Kajiado South", "Kajiado West"}},
	{Name: "Kericho", Constituencies: []string{"Belgut", "Ainamoi", "Bureti", "Sigowet/Soin", "Kipkelion East", "Kipkelion West"}},
	{Name: "Bomet", Constituencies: []string{"Bomet Central", "Bomet East", "Sotik", "Chepalungu", "Konoin"}},
	{Name: "Kakamega", Constituencies: []string{"Lugari", "Malava", "Lurambi", "Ikolomani", "Shinyalu", "Khwisero", "Matungu", "Likuyani", "Mumias East", "Mumias West", "Butere", "Navakholo"}},
	{Name: "Vihiga", Constituencies: []string{"Emuhaya", "Sabatia", "Hamisi", "Vihiga", "Luanda"}},
	{Name: "Bungoma", Constituencies: []string{"Kimilili", "Mount Elgon", "Tongaren", "Webuye East", "Webuye West", "Bumula", "Kabuchai", "Kanduyi", "Sirisia"}},
	{Name: "Busia", Constituencies: []string{"Nambale", "Butula", "Funyula", "Budalangi", "Matayos", "Teso North", "Teso South"}},
	{Name: "Siaya", Constituencies: []string{"Alego Usonga", "Gem", "Ugenya", "Ugunja", "Bondo", "Rarieda"}},
	{Name: "Kisumu", Constituencies: []string{"Kisumu West", "Kisumu Central", "Kisumu East", "Seme", "Nyando", "Muhoroni", "Nyakach"}},
	{Name: "Homa Bay", Constituencies: []string{"Homa Bay Town", "Kabondo Kasipul", "Karachuonyo", "Kasipul", "Ndhiwa", "Rangwe", "Suba North", "Suba South"}},
	{Name: "Migori", Constituencies: []string{"Uriri", "Nyatike", "Rongo", "Awendo", "Suna East", "Suna West", "Kuria East", "Kuria West"}},
	{Name: "Kisii", Constituencies: []string{"Bobasi", "Bomachoge Borabu", "Bomachoge Chache", "Kitutu Chache North", "Kitutu Chache South", "Nyaribari Chache", "Nyaribari Masaba", "South Mugirango", "Bonchari"}},
	{Name: "Nyamira", Constituencies: []string{"Borabu", "Kitutu Masaba", "North Mugirango", "West Mugirango"}},
	{Name: "Nairobi", Constituencies: []string{"Dagoretti North", "Dagoretti South", "Lang'ata", "Kibra", "Roysambu", "Kasarani", "Ruaraka", "Embakasi South", "Embakasi North", "Embakasi East", "Embakasi Central", "Embakasi West", "Makadara", "Kamukunji", "Starehe", "Mathare", "Westlands"}},
}

var countyKeys = func() map[string]string {
	keys := make(map[string]string, len(Counties))
	for _, c := range Counties {
		keys[countyKey(c.Name)] = c.Name
	}
	return keys
}()

// countyKey folds case, dash variants and surrounding space so that
// "taita–taveta" and "Taita-Taveta" match.
func countyKey(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), "–", "-")
	return strings.ToLower(name)
}

// CanonicalCounty returns the registry spelling of name.
func CanonicalCounty(name string) (string, bool) {
	canonical, ok := countyKeys[countyKey(name)]
	return canonical, ok
}

func CountyNames() []string {
	names := make([]string, len(Counties))
	for i, c := range Counties {
		names[i] = c.Name
	}
	return names
}
