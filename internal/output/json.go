package output

import (
	"encoding/json"

	"github.com/portlist/nu_plugin_port_list/pkg/model"
)

// ToJSON renders rows as an indented JSON array, keys in column order.
func ToJSON(rows []*model.Record) (string, error) {
	if rows == nil {
		rows = []*model.Record{}
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
