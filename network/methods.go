package network

import (
	"fmt"
	"sort"

	"github.com/go-errors/errors"
)

type method struct {
	// callback is the position of the callback argument, -1 if there is none.
	callback int
	call     func(w *Wifi, args []interface{}) (interface{}, error)
}

var methods = map[string]method{
	"connect": {callback: 2, call: func(w *Wifi, args []interface{}) (interface{}, error) {
		ssid, ok := arg(args, 0).(string)
		if !ok {
			return nil, argumentErrorf("No SSID provided")
		}

		opts, err := connectOptions(arg(args, 1))
		if err != nil {
			return nil, err
		}

		cb, err := optionalCallback(arg(args, 2))
		if err != nil {
			return nil, err
		}

		return nil, w.Connect(ssid, opts, cb)
	}},
	"disconnect": {callback: 0, call: func(w *Wifi, args []interface{}) (interface{}, error) {
		cb, err := optionalCallback(arg(args, 0))
		if err != nil {
			return nil, err
		}

		return nil, w.Disconnect(cb)
	}},
	"scan": {callback: 0, call: func(w *Wifi, args []interface{}) (interface{}, error) {
		cb, err := optionalCallback(arg(args, 0))
		if err != nil {
			return nil, err
		}

		return nil, w.Scan(cb)
	}},
	"getStatus":    query((*Wifi).GetStatus),
	"getDetails":   query((*Wifi).GetDetails),
	"getAPDetails": query((*Wifi).GetAPDetails),
	"getIP":        query((*Wifi).GetIP),
	"getAPIP":      query((*Wifi).GetAPIP),

	"startAP":       placeholder((*Wifi).StartAP),
	"stopAP":        placeholder((*Wifi).StopAP),
	"setConfig":     placeholder((*Wifi).SetConfig),
	"save":          placeholder((*Wifi).Save),
	"restore":       placeholder((*Wifi).Restore),
	"getHostByName": placeholder((*Wifi).GetHostByName),
	"getHostname":   placeholder((*Wifi).GetHostname),
	"setHostname":   placeholder((*Wifi).SetHostname),
	"ping":          placeholder((*Wifi).Ping),
}

func query(fn func(*Wifi, Callback) (*Record, error)) method {
	return method{callback: 0, call: func(w *Wifi, args []interface{}) (interface{}, error) {
		cb, err := optionalCallback(arg(args, 0))
		if err != nil {
			return nil, err
		}

		return fn(w, cb)
	}}
}

func placeholder(fn func(*Wifi) error) method {
	return method{callback: -1, call: func(w *Wifi, args []interface{}) (interface{}, error) {
		return nil, fn(w)
	}}
}

// Methods lists the names accepted by Invoke.
func Methods() []string {
	names := make([]string, 0, len(methods))
	for name := range methods {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// CallbackArg returns the position of the callback argument of a method.
func CallbackArg(name string) (int, bool) {
	m, ok := methods[name]
	if !ok || m.callback < 0 {
		return 0, false
	}

	return m.callback, true
}

// Invoke calls a method by name with loosely typed runtime values: strings,
// numbers, booleans, nil, map[string]interface{} objects and Callback
// functions. Values of the wrong shape yield an *ArgumentError.
func (w *Wifi) Invoke(name string, args ...interface{}) (interface{}, error) {
	m, ok := methods[name]
	if !ok {
		return nil, errors.WrapPrefix(ErrUnknownMethod, name, 0)
	}

	w.log.Debugf("Invoking %v with %d arguments", name, len(args))

	return m.call(w, args)
}

func arg(args []interface{}, i int) interface{} {
	if i < len(args) {
		return args[i]
	}

	return nil
}

func optionalCallback(v interface{}) (Callback, error) {
	switch cb := v.(type) {
	case nil:
		return nil, nil
	case Callback:
		return cb, nil
	case func(...interface{}):
		return cb, nil
	default:
		return nil, argumentErrorf("Expecting callback function but got %v", typeName(v))
	}
}

func connectOptions(v interface{}) (*ConnectOptions, error) {
	if v == nil {
		return nil, nil
	}

	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, argumentErrorf("Expecting options object but got %v", typeName(v))
	}

	opts := &ConnectOptions{}

	if password, ok := obj["password"]; ok && password != nil {
		s, ok := password.(string)
		if !ok {
			return nil, argumentErrorf("Expecting options.password to be a string but got %v", typeName(password))
		}

		opts.Password = s
	}

	return opts, nil
}

// typeName names a runtime value's type the way script authors know it.
func typeName(v interface{}) string {
	switch v.(type) {
	case nil:
		return "undefined"
	case string:
		return "String"
	case bool:
		return "Boolean"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return "Number"
	case map[string]interface{}:
		return "Object"
	case []interface{}:
		return "Array"
	case Callback, func(...interface{}):
		return "Function"
	default:
		return fmt.Sprintf("%T", v)
	}
}
