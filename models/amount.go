package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Amount is a seller-entered quantity or price. Clients send either a JSON
// number or a string, so the value is kept in its textual form.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*a = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*a = Amount(strings.TrimSpace(str))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("amount must be a number or a string: %w", err)
	}
	*a = Amount(n.String())
	return nil
}

// UnmarshalBSONValue accepts the numeric encodings older records were written with.
func (a *Amount) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.String:
		*a = Amount(rv.StringValue())
	case bsontype.Double:
		*a = Amount(strconv.FormatFloat(rv.Double(), 'f', -1, 64))
	case bsontype.Int32:
		*a = Amount(strconv.FormatInt(int64(rv.Int32()), 10))
	case bsontype.Int64:
		*a = Amount(strconv.FormatInt(rv.Int64(), 10))
	case bsontype.Null, bsontype.Undefined:
		*a = ""
	default:
		return fmt.Errorf("cannot decode BSON %s into an amount", t)
	}
	return nil
}

func (a Amount) IsZero() bool {
	return strings.TrimSpace(string(a)) == ""
}

// Float reports the numeric value of the amount, if it has one.
func (a Amount) Float() (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(a)), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
