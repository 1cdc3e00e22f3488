package i18n

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "input" or "tuple").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg := t.lookup(code)
	if msg == "" {
		return code
	}
	if in := data["input"]; in != "" {
		return msg + ": " + in
	}
	return msg
}

func (t dictTranslator) lookup(code string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "invalid_type":
			return "型が不正です"
		case "invalid_length":
			return "配列長が不正です"
		case "parse_error":
			return "解析エラー"
		case "tuple_parens":
			return "(u8,[u8;N]) 形式のタプルが必要です"
		case "tuple_arity":
			return "タプルの要素数が不正です"
		case "tuple_head":
			return "タプルの先頭要素は u8 である必要があります"
		case "array_brackets":
			return "[u8;N] 形式の配列が必要です"
		case "array_separator":
			return "配列に ';' がありません"
		case "array_element":
			return "配列要素は u8 のみ対応しています"
		case "array_length":
			return "配列長は非負整数である必要があります"
		case "unsupported_tuple":
			return "未対応のタプル形式です"
		}
	default: // "en"
		switch code {
		case "invalid_type":
			return "invalid type expression"
		case "invalid_length":
			return "invalid array length"
		case "parse_error":
			return "parse error"
		case "tuple_parens":
			return "expected tuple like (u8,[u8;N])"
		case "tuple_arity":
			return "wrong number of tuple items"
		case "tuple_head":
			return "first tuple item must be u8"
		case "array_brackets":
			return "expected array like [u8;N]"
		case "array_separator":
			return "missing ';' in array body"
		case "array_element":
			return "only u8 element supported here"
		case "array_length":
			return "array length must be a non-negative integer"
		case "unsupported_tuple":
			return "tuple shape not yet supported"
		}
	}
	return ""
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
