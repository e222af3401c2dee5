package teams

// Aliases maps fan nicknames to the normalized team name the backend uses.
var Aliases = map[string]string{
	"habs":          "canadiens",
	"les habitants": "canadiens",
	"leafs":         "maple leafs",
	"buds":          "maple leafs",
	"sens":          "senators",
	"b's":           "bruins",
	"bs":            "bruins",
	"wings":         "red wings",
	"bolts":         "lightning",
	"cats":          "panthers",
	"pens":          "penguins",
	"caps":          "capitals",
	"canes":         "hurricanes",
	"isles":         "islanders",
	"jackets":       "blue jackets",
	"cbj":           "blue jackets",
	"hawks":         "blackhawks",
	"avs":           "avalanche",
	"preds":         "predators",
	"yotes":         "utah hockey club",
	"coyotes":       "utah hockey club",
	"nucks":         "canucks",
	"oil":           "oilers",
	"knights":       "golden knights",
	"vgk":           "golden knights",
	"blueshirts":    "rangers",
}
