package value

// StringObj is an immutable, interned UTF-8 string (§3 "String").
type StringObj struct {
	Chars string
}
