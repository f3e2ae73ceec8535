// Package canonical rewrites raw roaster vocabulary into the fixed
// vocabulary used by search and indexing. It is the final pipeline stage
// and always runs, whatever earlier stages did.
package canonical

import (
	"strings"

	"mspro-labs/bean-atlas/internal/models"
)

// Lookup keys are lowercased raw values. Every canonical value must map
// back to itself so that remapping an already-canonical record is a no-op.

var countries = map[string]string{
	"bolivia":                          "Bolivia",
	"brasil":                           "Brazil",
	"brazil":                           "Brazil",
	"burundi":                          "Burundi",
	"colombia":                         "Colombia",
	"columbia":                         "Colombia",
	"congo":                            "Democratic Republic of the Congo",
	"costa rica":                       "Costa Rica",
	"d.r. congo":                       "Democratic Republic of the Congo",
	"democratic republic of the congo": "Democratic Republic of the Congo",
	"drc":                              "Democratic Republic of the Congo",
	"east timor":                       "Timor-Leste",
	"ecuador":                          "Ecuador",
	"el salvador":                      "El Salvador",
	"ethiopia":                         "Ethiopia",
	"ethiopa":                          "Ethiopia",
	"guatemala":                        "Guatemala",
	"honduras":                         "Honduras",
	"india":                            "India",
	"indonesia":                        "Indonesia",
	"kenia":                            "Kenya",
	"kenya":                            "Kenya",
	"mexico":                           "Mexico",
	"méxico":                           "Mexico",
	"myanmar":                          "Myanmar",
	"nicaragua":                        "Nicaragua",
	"panama":                           "Panama",
	"papua new guinea":                 "Papua New Guinea",
	"peru":                             "Peru",
	"perú":                             "Peru",
	"png":                              "Papua New Guinea",
	"rwanda":                           "Rwanda",
	"tanzania":                         "Tanzania",
	"timor-leste":                      "Timor-Leste",
	"timor leste":                      "Timor-Leste",
	"uganda":                           "Uganda",
	"vietnam":                          "Vietnam",
	"yemen":                            "Yemen",
}

var processes = map[string]string{
	"anaerobic":            "Anaerobic",
	"anaerobic natural":    "Anaerobic Natural",
	"anaerobic washed":     "Anaerobic Washed",
	"black honey":          "Black Honey",
	"carbonic":             "Carbonic Maceration",
	"carbonic maceration":  "Carbonic Maceration",
	"double fermentation":  "Double Fermentation",
	"dry":                  "Natural",
	"dry process":          "Natural",
	"dry processed":        "Natural",
	"fully washed":         "Washed",
	"giling basah":         "Wet-Hulled",
	"honey":                "Honey",
	"honey process":        "Honey",
	"natural":              "Natural",
	"natural process":      "Natural",
	"pulped natural":       "Honey",
	"red honey":            "Red Honey",
	"semi-washed":          "Honey",
	"sun dried":            "Natural",
	"sun-dried":            "Natural",
	"unwashed":             "Natural",
	"washed":               "Washed",
	"washed process":       "Washed",
	"wet":                  "Washed",
	"wet hulled":           "Wet-Hulled",
	"wet process":          "Washed",
	"wet processed":        "Washed",
	"wet-hulled":           "Wet-Hulled",
	"white honey":          "White Honey",
	"yellow honey":         "Yellow Honey",
}

var varieties = map[string]string{
	"bourbon":        "Bourbon",
	"bourbón":        "Bourbon",
	"castillo":       "Castillo",
	"catuai":         "Catuai",
	"catuaí":         "Catuai",
	"caturra":        "Caturra",
	"geisha":         "Gesha",
	"gesha":          "Gesha",
	"heirloom":       "Ethiopian Landrace",
	"ethiopian heirloom": "Ethiopian Landrace",
	"ethiopian landrace": "Ethiopian Landrace",
	"jarc 74110":     "74110",
	"jarc 74158":     "74158",
	"74110":          "74110",
	"74158":          "74158",
	"mundo novo":     "Mundo Novo",
	"pacamara":       "Pacamara",
	"pink bourbon":   "Pink Bourbon",
	"red bourbon":    "Red Bourbon",
	"red catuai":     "Red Catuai",
	"sl 28":          "SL28",
	"sl-28":          "SL28",
	"sl28":           "SL28",
	"sl 34":          "SL34",
	"sl-34":          "SL34",
	"sl34":           "SL34",
	"typica":         "Typica",
	"yellow bourbon": "Yellow Bourbon",
}

var protocols = map[string]string{
	"bird friendly":       "Bird Friendly",
	"certified organic":   "Organic",
	"direct trade":        "Direct Trade",
	"fair trade":          "Fairtrade",
	"fair-trade":          "Fairtrade",
	"fairtrade":           "Fairtrade",
	"fto":                 "Fairtrade Organic",
	"fairtrade organic":   "Fairtrade Organic",
	"organic":             "Organic",
	"rainforest alliance": "Rainforest Alliance",
	"smithsonian bird friendly": "Bird Friendly",
	"usda organic":        "Organic",
}

// Remap rewrites the record's raw vocabulary in place. Unknown values are
// kept as-is (trimmed); applying Remap twice is the same as applying it
// once.
func Remap(c *models.Coffee) {
	c.Country = lookup(countries, c.Country)
	c.Process = lookup(processes, c.Process)
	c.Variety = lookup(varieties, c.Variety)
	c.Protocol = lookup(protocols, c.Protocol)
}

func lookup(table map[string]string, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if canon, ok := table[strings.ToLower(raw)]; ok {
		return canon
	}
	return raw
}
