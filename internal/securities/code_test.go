package securities

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"600519", "600519"},
		{"600519.SH", "600519"},
		{"sz000858", "000858"},
		{"  300750 ", "300750"},
		{"1.600519", "600519"}, // exchange-prefix contamination, keep last 6
		{"hk00700", "00700"},
		{"HK.0700", "00700"},
		{"hk700", "00700"},
		{"00700", "00700"}, // ambiguous 5-digit, leading zero kept
		{"hk", ""},
		{"", ""},
		{"   ", ""},
		{"abc", ""},
		{"12345", "12345"}, // 5 digits, no leading zero: passes through
	}

	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"600519.SH", "sz000858", "hk700", "00700", "832000", "HK.0700", "junk", ""}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNormalizeHK(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"700", "00700"},
		{"0700.HK", "00700"},
		{"00700", "00700"},
		{"3690", "03690"},
		{"", ""},
		{"no-digits", ""},
	}
	for _, c := range cases {
		if got := NormalizeHK(c.in); got != c.want {
			t.Errorf("NormalizeHK(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestIsHongKong(t *testing.T) {
	cases := []struct {
		code string
		name string
		want bool
	}{
		{"00700", "腾讯控股", true},   // 5-digit leading zero
		{"hk03690", "美团", true},   // raw HK prefix
		{"600519", "贵州茅台", false},
		{"000858", "五粮液", false}, // 6-digit Shenzhen, not HK
		{"3690", "美团-W(港股)", true}, // name marker
		{"1024", "KUAISHOU HK", true},
	}
	for _, c := range cases {
		if got := IsHongKong(c.code, c.name); got != c.want {
			t.Errorf("IsHongKong(%q, %q) = %v, want %v", c.code, c.name, got, c.want)
		}
	}
}

func TestVenueKey(t *testing.T) {
	cases := []struct {
		code string
		want string
		ok   bool
	}{
		{"600519", "sh600519", true},
		{"000858", "sz000858", true},
		{"300750", "sz300750", true},
		{"832000", "bj832000", true},
		{"430047", "bj430047", true},
		{"920001", "bj920001", true},
		{"00700", "hk00700", true},
		{"12345", "hk12345", true},
		{"", "", false},
		{"7600519", "", false}, // 7 digits: unroutable
		{"123", "", false},
	}
	for _, c := range cases {
		got, ok := VenueKey(c.code)
		if got != c.want || ok != c.ok {
			t.Errorf("VenueKey(%q) = (%q, %v), want (%q, %v)", c.code, got, ok, c.want, c.ok)
		}
	}
}
