package protocol

import "fmt"

// Known model numbers reported in Identification/1. Additional models may
// exist.
var models = map[int]string{
	0:  "8476W",
	1:  "8810",
	2:  "8620W",
	3:  "8820",
	4:  "8910W",
	5:  "8830",
	6:  "8920W",
	7:  "8840",
	28: "6045M",
}

// ModelName returns the marketing name for a model number, or a placeholder
// naming the number when it is not known.
func ModelName(number int) string {
	if name, ok := models[number]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (%d)", number)
}

// KnownModel reports whether number is in the model table.
func KnownModel(number int) bool {
	_, ok := models[number]
	return ok
}
