// Package assert panics on programmer errors, such as missing dependencies.
package assert

func NotNil(value any) {
	if value == nil {
		panic("expected value to be not nil")
	}
}
