package dto

import (
	"fmt"
	"reflect"
	"strings"

	"go-pharmacy-reservation/internal/wire"

	"github.com/go-viper/mapstructure/v2"
	"github.com/shopspring/decimal"
)

var decimalType = reflect.TypeOf(decimal.Decimal{})

// Bind copies request parameters into the param-tagged fields of out.
// Integers are base 10; malformed ones bind as zero. A boolean is true only
// for "true" in any case. Money takes decimal text. Unknown parameters are
// ignored.
func Bind(params map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "param",
		Result:     out,
		DecodeHook: paramHook,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(params)
}

func paramHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	text := strings.TrimSpace(data.(string))

	if to == decimalType {
		v, err := decimal.NewFromString(text)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q", text)
		}
		return v, nil
	}

	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return wire.Field(text).Int(0), nil
	case reflect.Bool:
		return strings.EqualFold(text, "true"), nil
	}
	return data, nil
}
