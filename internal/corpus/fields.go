// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import "github.com/pdiddy/cord-loader/pkg/types"

// ExtractFields copies the fields named by q.Keys out of record. Keys absent
// from record are omitted unless they are mandatory, in which case a
// *MissingFieldError is returned and no row is produced. record is not
// modified.
func ExtractFields(record map[string]any, q types.FieldQuery) (types.Row, error) {
	for _, m := range q.Mandatory {
		if _, ok := record[m]; !ok {
			return nil, &MissingFieldError{Field: m}
		}
	}

	row := make(types.Row, len(q.Keys)+1)
	for _, k := range q.Keys {
		if v, ok := record[k]; ok {
			row[k] = v
		}
	}
	return row, nil
}
