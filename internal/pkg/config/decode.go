/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"fmt"
	"math"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

var (
	byteSize = regexp.MustCompile(`^(?P<size>[0-9]+)\s*(?i)(?P<unit>(k|m|g))b?$`)
	seconds  = regexp.MustCompile(`^[0-9]+$`)
)

func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		secondsDecodeHook,
		mapstructure.StringToTimeDurationHookFunc(),
		listDecodeHook,
		byteSizeDecodeHook,
	)
}

// secondsDecodeHook reads plain numbers as a number of seconds when the
// target is a duration.
func secondsDecodeHook(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
	if t != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}
	switch v := data.(type) {
	case int:
		return time.Duration(v) * time.Second, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	case uint64:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	case string:
		if seconds.MatchString(v) {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return data, nil
			}
			return time.Duration(n) * time.Second, nil
		}
	}
	return data, nil
}

// listDecodeHook parses strings of the format "[thing1, thing2, thing3]"
// into string slices. Whitespace around elements is removed.
func listDecodeHook(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
	if f.Kind() != reflect.String || t.Kind() != reflect.Slice {
		return data, nil
	}

	raw := data.(string)
	l := len(raw)
	if l > 1 && raw[0] == '[' && raw[l-1] == ']' {
		slice := strings.Split(raw[1:l-1], ",")
		for i, v := range slice {
			slice[i] = strings.TrimSpace(v)
		}
		return slice, nil
	}

	return data, nil
}

// byteSizeDecodeHook accepts sizes such as "10 MB" for uint32 fields.
func byteSizeDecodeHook(f reflect.Kind, t reflect.Kind, data interface{}) (interface{}, error) {
	if f != reflect.String || t != reflect.Uint32 {
		return data, nil
	}
	raw := data.(string)
	if !byteSize.MatchString(raw) {
		return data, nil
	}
	size, err := strconv.ParseUint(byteSize.ReplaceAllString(raw, "${size}"), 0, 64)
	if err != nil {
		return data, nil
	}
	switch strings.ToLower(byteSize.ReplaceAllString(raw, "${unit}")) {
	case "g":
		size = size << 10
		fallthrough
	case "m":
		size = size << 10
		fallthrough
	case "k":
		size = size << 10
	}
	if size > math.MaxUint32 {
		return size, fmt.Errorf("value '%s' overflows uint32", raw)
	}
	return size, nil
}

// Decode decodes a parameters document into output. Keys that match no
// field are rejected.
func Decode(input interface{}, output interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           output,
		DecodeHook:       decodeHook(),
	})
	if err != nil {
		return errors.Wrap(err, "failed to create decoder")
	}
	return decoder.Decode(Normalize(input))
}

// ReadParameters reads a YAML or JSON parameters file. Keys keep their
// case; policy and organization names are case sensitive.
func ReadParameters(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read parameters file %s", path)
	}
	raw := map[interface{}]interface{}{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, "failed to parse parameters file %s", path)
	}
	return Normalize(raw).(map[string]interface{}), nil
}

// Normalize converts the map[interface{}]interface{} values produced by
// yaml.v2 into map[string]interface{}, recursively.
func Normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = Normalize(val)
		}
		return m
	case map[string]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, val := range t {
			m[k] = Normalize(val)
		}
		return m
	case []interface{}:
		s := make([]interface{}, len(t))
		for i, val := range t {
			s[i] = Normalize(val)
		}
		return s
	}
	return v
}
