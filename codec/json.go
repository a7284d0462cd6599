package codec

import "encoding/json"

// JSON round-trips the usual encoding/json shapes; all numbers come back as
// float64.
type JSON struct{}

func (JSON) Encode(v any) ([]byte, error) { return json.Marshal(v) }
func (JSON) Decode(b []byte) (any, error) {
	var v any
	err := json.Unmarshal(b, &v)
	return v, err
}
