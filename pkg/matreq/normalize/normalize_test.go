package normalize

import (
	"reflect"
	"testing"
)

func TestTextBasic(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"case and punctuation", "Request 50 KG Cotton Fabric, for Cutting!!", "request 50 kg cotton fabric for cutting"},
		{"whitespace", "  send\t\n 10   m  elastic ", "send 10 m elastic"},
		{"decimal kept", "need 2.5 kg thread.", "need 2.5 kg thread"},
		{"thousands kept", "1,200 pcs labels", "1,200 pcs labels"},
		{"digit unit split", "50kg cotton", "50 kg cotton"},
		{"unit digit split", "kg50", "kg 50"},
		{"hyphenated word", "T-Shirt labels", "t-shirt labels"},
		{"order reference", "for PO-1001.", "for po-1001"},
		{"number dash unit", "20-kg cotton", "20 kg cotton"},
		{"latin diacritics", "10 mètres élastique", "10 metres elastique"},
		{"full width digits", "５０ kg", "50 kg"},
		{"only noise", "?!...", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.in); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTextCodeSwitched(t *testing.T) {
	got := Text("Cutting को 20 kg cotton भेज दो।")
	want := "cutting को 20 kg cotton भेज दो"
	if got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}

	// script change without a space still splits
	got = Text("Cuttingको 20kg")
	want = "cutting को 20 kg"
	if got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestTextKeepsIndicMarks(t *testing.T) {
	// vowel signs, nukta and virama are combining marks and must survive
	for _, in := range []string{"कपड़ा", "सिलाई", "ಹತ್ತಿ", "பருத்தி", "పత్తి", "ਤੁਰੰਤ", "તાત્કાલિક"} {
		got := Text(in)
		if got != Text(got) {
			t.Errorf("Text(%q) is not idempotent: %q", in, got)
		}
		if len([]rune(got)) < len([]rune(in))-1 {
			t.Errorf("Text(%q) = %q lost combining marks", in, got)
		}
	}
}

func TestTextNativeDigits(t *testing.T) {
	tests := map[string]string{
		"२० किलो":   "20 किलो",
		"೧೫ ಮೀಟರ್": "15 ಮೀಟರ್",
		"௫ kg":     "5 kg",
		"૧૦ kg":    "10 kg",
	}
	for in, want := range tests {
		if got := Text(in); got != want {
			t.Errorf("Text(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTextIdempotent(t *testing.T) {
	inputs := []string{
		"Request 50 kg Cotton Fabric for Cutting",
		"Cutting को 20 kg cotton भेज दो",
		"QC needs 5 litres chemical urgent",
		"<p>send <b>10</b> m elastic</p>",
	}
	for _, in := range inputs {
		once := Text(in)
		if twice := Text(once); twice != once {
			t.Errorf("Text not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestTokens(t *testing.T) {
	got := Tokens(Text("Send 5 L chemical to QC"))
	want := []string{"send", "5", "l", "chemical", "to", "qc"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens() = %v, want %v", got, want)
	}
	if len(Tokens("")) != 0 {
		t.Error("Tokens of empty text should be empty")
	}
}
