// Package furuno implements the Furuno (DRS/FAR/NXT) command channel,
// report parsing, range table, and run-length spoke decoder (spec §4.D
// "Furuno details", §6).
package furuno

// modelByPartNumber maps the leading part-number token of an N96
// "modules" report to a model name (spec §4.D, §8 scenario 3). Not
// exhaustive — an unrecognized part number leaves the model unknown
// rather than guessing.
var modelByPartNumber = map[string]string{
	"0359360": "DRS4DNXT",
	"0359361": "DRS6ANXT",
	"0359362": "DRS12ANXT",
	"0359370": "DRS25ANXT",
	"0000178": "FAR2xx8",
}

func modelForPartNumber(partNo string) (string, bool) {
	name, ok := modelByPartNumber[partNo]
	return name, ok
}
