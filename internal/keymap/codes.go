package keymap

// Code is the logical key identity reported to the output sink. Values
// follow the Linux input event key codes so virtual devices can forward
// them unchanged. The zero value means "no key".
type Code uint16

// CodeNone marks an empty press-state slot.
const CodeNone Code = 0

// Key codes used by the keymap layers (linux/input-event-codes.h values).
const (
	KeyEsc        Code = 1
	Key1          Code = 2
	Key2          Code = 3
	Key3          Code = 4
	Key4          Code = 5
	Key5          Code = 6
	Key6          Code = 7
	Key7          Code = 8
	Key8          Code = 9
	Key9          Code = 10
	Key0          Code = 11
	KeyMinus      Code = 12
	KeyEqual      Code = 13
	KeyBackspace  Code = 14
	KeyTab        Code = 15
	KeyQ          Code = 16
	KeyW          Code = 17
	KeyE          Code = 18
	KeyR          Code = 19
	KeyT          Code = 20
	KeyY          Code = 21
	KeyU          Code = 22
	KeyI          Code = 23
	KeyO          Code = 24
	KeyP          Code = 25
	KeyLeftBrace  Code = 26
	KeyRightBrace Code = 27
	KeyEnter      Code = 28
	KeyLeftCtrl   Code = 29
	KeyA          Code = 30
	KeyS          Code = 31
	KeyD          Code = 32
	KeyF          Code = 33
	KeyG          Code = 34
	KeyH          Code = 35
	KeyJ          Code = 36
	KeyK          Code = 37
	KeyL          Code = 38
	KeySemicolon  Code = 39
	KeyApostrophe Code = 40
	KeyGrave      Code = 41
	KeyLeftShift  Code = 42
	KeyBackslash  Code = 43
	KeyZ          Code = 44
	KeyX          Code = 45
	KeyC          Code = 46
	KeyV          Code = 47
	KeyB          Code = 48
	KeyN          Code = 49
	KeyM          Code = 50
	KeyComma      Code = 51
	KeyDot        Code = 52
	KeySlash      Code = 53
	KeyRightShift Code = 54
	KeyLeftAlt    Code = 56
	KeySpace      Code = 57
	KeyF1         Code = 59
	KeyF2         Code = 60
	KeyF3         Code = 61
	KeyF4         Code = 62
	KeyF5         Code = 63
	KeyF6         Code = 64
	KeyF7         Code = 65
	KeyF8         Code = 66
	KeyF9         Code = 67
	KeyF10        Code = 68
	Key102nd      Code = 86
	KeyF11        Code = 87
	KeyF12        Code = 88
	KeyHome       Code = 102
	KeyUp         Code = 103
	KeyLeft       Code = 105
	KeyRight      Code = 106
	KeyEnd        Code = 107
	KeyDown       Code = 108
	KeyPower      Code = 116
	KeyFn         Code = 464
	BtnLeft       Code = 272
	BtnRight      Code = 273
	BtnMiddle     Code = 274
)
