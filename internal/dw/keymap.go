// Package dw normalizes raw data-warehouse records into the internal field
// naming scheme. The mapping tables are the wire contract with the upstream
// warehouse; changing a pair breaks downstream report consumers.
package dw

// Record is a raw or normalized data-warehouse row.
type Record = map[string]interface{}

// KeyMapping translates upstream field names to internal field names.
type KeyMapping = map[string]string

// ConvertKeys rewrites the keys of a record according to the mapping. Pairs
// whose source key is not in the mapping are dropped; nothing is defaulted.
func ConvertKeys(data Record, mapping KeyMapping) Record {
	converted := make(Record, len(data))
	for key, value := range data {
		if target, ok := mapping[key]; ok {
			converted[target] = value
		}
	}
	return converted
}

// ConvertList applies ConvertKeys element-wise, preserving order.
func ConvertList(data []Record, mapping KeyMapping) []Record {
	converted := make([]Record, len(data))
	for i, item := range data {
		converted[i] = ConvertKeys(item, mapping)
	}
	return converted
}
