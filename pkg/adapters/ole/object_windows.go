//go:build windows

package ole

import (
	"context"
	"fmt"
	"runtime"
	"unsafe"

	"github.com/aretw0/cadbridge/pkg/domain"
	"github.com/aretw0/cadbridge/pkg/ports"
	ole "github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
	"golang.org/x/sys/windows"
)

var (
	oleaut32                  = windows.NewLazySystemDLL("oleaut32.dll")
	procSafeArrayCreateVector = oleaut32.NewProc("SafeArrayCreateVector")
	procSafeArrayPutElement   = oleaut32.NewProc("SafeArrayPutElement")
	procSafeArrayGetElement   = oleaut32.NewProc("SafeArrayGetElement")
)

// object is a host object reached through IDispatch.
type object struct {
	apt  *apartment
	disp *ole.IDispatch
	name string
}

// newObject takes ownership of one reference to disp.
func newObject(apt *apartment, disp *ole.IDispatch, name string) *object {
	o := &object{apt: apt, disp: disp, name: name}
	runtime.SetFinalizer(o, func(o *object) {
		o.apt.post(func() { o.disp.Release() })
	})
	return o
}

func (o *object) String() string { return o.name }

func (o *object) Call(ctx context.Context, method string, args ...any) (any, error) {
	var out any
	err := o.apt.run(ctx, func() error {
		params, cleanup, err := o.marshal(args)
		if err != nil {
			return err
		}
		defer cleanup()
		v, err := oleutil.CallMethod(o.disp, method, params...)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", o.name, method, err)
		}
		out, err = o.unmarshal(v, method)
		return err
	})
	return out, err
}

func (o *object) Get(ctx context.Context, property string) (any, error) {
	var out any
	err := o.apt.run(ctx, func() error {
		v, err := oleutil.GetProperty(o.disp, property)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", o.name, property, err)
		}
		out, err = o.unmarshal(v, property)
		return err
	})
	return out, err
}

// marshal converts port arguments into values the dispatcher understands.
func (o *object) marshal(args []any) ([]any, func(), error) {
	params := make([]any, len(args))
	var owned []*ole.VARIANT
	cleanup := func() {
		for _, v := range owned {
			_ = v.Clear()
		}
	}
	for i, a := range args {
		switch v := a.(type) {
		case *ports.Out:
			params[i] = &v.Value
		case *object:
			params[i] = v.disp
		case *application:
			params[i] = v.disp
		case []float64:
			arr, err := doubleArray(v)
			if err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("argument %d: %w", i, err)
			}
			owned = append(owned, arr)
			params[i] = arr
		case bool, int32, int, int64, float64, string, nil:
			params[i] = v
		default:
			if a == ports.Null {
				params[i] = (*ole.IDispatch)(nil)
				continue
			}
			cleanup()
			return nil, nil, domain.Invalid("argument %d: unsupported type %T", i, a)
		}
	}
	return params, cleanup, nil
}

// unmarshal converts a result variant into port values. Dispatch results
// become objects that own their reference.
func (o *object) unmarshal(v *ole.VARIANT, member string) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch {
	case v.VT == ole.VT_DISPATCH:
		d := v.ToIDispatch()
		if d == nil {
			return nil, nil
		}
		return newObject(o.apt, d, member), nil
	case v.VT&ole.VT_ARRAY != 0:
		defer v.Clear()
		return o.array(v, member)
	}
	defer v.Clear()
	return v.Value(), nil
}

func (o *object) array(v *ole.VARIANT, member string) (any, error) {
	arr := v.ToArray()
	if arr == nil {
		return nil, nil
	}
	n, err := arr.TotalElements(0)
	if err != nil {
		return nil, err
	}
	out := make([]any, n)
	switch v.VT &^ ole.VT_ARRAY {
	case ole.VT_DISPATCH:
		for i := int32(0); i < n; i++ {
			var d *ole.IDispatch
			hr, _, _ := procSafeArrayGetElement.Call(
				uintptr(unsafe.Pointer(arr.Array)),
				uintptr(unsafe.Pointer(&i)),
				uintptr(unsafe.Pointer(&d)),
			)
			if hr != 0 {
				return nil, ole.NewError(hr)
			}
			if d != nil {
				out[i] = newObject(o.apt, d, fmt.Sprintf("%s[%d]", member, i))
			}
		}
	default:
		for i, e := range arr.ToValueArray() {
			if d, ok := e.(*ole.IDispatch); ok && d != nil {
				d.AddRef()
				out[i] = newObject(o.apt, d, fmt.Sprintf("%s[%d]", member, i))
				continue
			}
			out[i] = e
		}
	}
	return out, nil
}

// doubleArray builds a VT_ARRAY|VT_R8 variant. The caller clears it.
func doubleArray(vals []float64) (*ole.VARIANT, error) {
	sa, _, err := procSafeArrayCreateVector.Call(uintptr(ole.VT_R8), 0, uintptr(len(vals)))
	if sa == 0 {
		return nil, fmt.Errorf("creating array: %w", err)
	}
	for i := range vals {
		idx := int32(i)
		hr, _, _ := procSafeArrayPutElement.Call(sa, uintptr(unsafe.Pointer(&idx)), uintptr(unsafe.Pointer(&vals[i])))
		if hr != 0 {
			return nil, ole.NewError(hr)
		}
	}
	v := ole.NewVariant(ole.VT_ARRAY|ole.VT_R8, int64(sa))
	return &v, nil
}
