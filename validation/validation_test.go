package validation

import "testing"

func TestValidators(t *testing.T) {
	v := Violations{}
	Required("client_id", " ", v)
	PositiveFloat("items[0].quantity", 0, v)
	NonNegativeFloat("discount", -1, v)
	RangeFloat("items[0].tax_rate", 120, 0, 100, v)
	Currency("currency", "XYZ1", v)
	Currency("currency_ok", "EUR", v)
	Currency("currency_empty", "", v)

	want := map[string]string{
		"client_id":         "required",
		"items[0].quantity": "must_be_positive",
		"discount":          "must_be_positive",
		"items[0].tax_rate": "out_of_range",
		"currency":          "invalid_currency",
	}
	if len(v) != len(want) {
		t.Fatalf("violations = %v", v)
	}
	for k, code := range want {
		if v[k] != code {
			t.Errorf("%s = %q, want %q", k, v[k], code)
		}
	}
}

func TestLocalized(t *testing.T) {
	v := Violations{"name": "required"}
	got := v.Localized(func(code string) string { return "<" + code + ">" })
	if got["name"] != "<required>" {
		t.Fatalf("Localized = %v", got)
	}
	if !(Violations{}).Empty() {
		t.Fatal("empty violations not Empty")
	}
}
