package protocol

import "testing"

func TestLookupSchema(t *testing.T) {
	for _, action := range []Action{ActionWrite, ActionReadRequest, ActionReadResponse, ActionCOS} {
		if _, ok := LookupSchema(action, DomainControl, 1); !ok {
			t.Errorf("LookupSchema(%s, control, 1) not found", action)
		}
	}
	for _, action := range []Action{ActionNone, ActionNack} {
		if _, ok := LookupSchema(action, DomainControl, 1); ok {
			t.Errorf("LookupSchema(%s, control, 1) found, want none", action)
		}
	}
	if _, ok := LookupSchema(ActionReadResponse, DomainWeather, 1); ok {
		t.Error("LookupSchema(weather/1) found, want none")
	}
}

func TestLookupSchema_ReturnsCopy(t *testing.T) {
	specs, _ := LookupSchema(ActionReadResponse, DomainControl, 1)
	specs[0].Name = "mutated"

	again, _ := LookupSchema(ActionReadResponse, DomainControl, 1)
	if again[0].Name != FieldMode {
		t.Errorf("schema mutated through LookupSchema: %q", again[0].Name)
	}
}

func TestSchemaLayout(t *testing.T) {
	tests := []struct {
		domain Domain
		attr   byte
		width  int
	}{
		{DomainSetup, 1, 44},
		{DomainControl, 1, 4},
		{DomainScheduling, 4, 10},
		{DomainSensors, 1, 16},
		{DomainSensors, 2, 8},
		{DomainIdentification, 2, 6},
		{DomainIdentification, 4, 24},
		{DomainIdentification, 5, 24},
	}

	for _, tt := range tests {
		specs, ok := LookupSchema(ActionReadResponse, tt.domain, tt.attr)
		if !ok {
			t.Errorf("%s/%d missing", tt.domain, tt.attr)
			continue
		}
		width := 0
		for _, s := range specs {
			width += s.Width()
		}
		if width != tt.width {
			t.Errorf("%s/%d width = %d, want %d", tt.domain, tt.attr, width, tt.width)
		}
	}

	setup, _ := LookupSchema(ActionReadResponse, DomainSetup, 1)
	if setup[26].Name != FieldAwayAvailable {
		t.Errorf("setup[26] = %q, want %q", setup[26].Name, FieldAwayAvailable)
	}
}

func TestAttributes_Sorted(t *testing.T) {
	keys := Attributes()
	if len(keys) != 18 {
		t.Errorf("len(Attributes()) = %d, want 18", len(keys))
	}
	for i := 1; i < len(keys); i++ {
		prev, cur := keys[i-1], keys[i]
		if prev.Domain > cur.Domain || (prev.Domain == cur.Domain && prev.Attribute >= cur.Attribute) {
			t.Errorf("Attributes() not sorted at %d: %v then %v", i, prev, cur)
		}
	}
}

func TestDomain(t *testing.T) {
	if DomainControl.String() != "control" {
		t.Errorf("DomainControl.String() = %q", DomainControl.String())
	}
	if Domain(11).Valid() {
		t.Error("Domain(11).Valid() = true, want false")
	}
	if got := Domain(11).String(); got != "domain(11)" {
		t.Errorf("Domain(11).String() = %q", got)
	}

	tests := []struct {
		in      string
		want    Domain
		wantErr bool
	}{
		{"control", DomainControl, false},
		{"identification", DomainIdentification, false},
		{"8", DomainIdentification, false},
		{"11", DomainNone, true},
		{"bogus", DomainNone, true},
	}
	for _, tt := range tests {
		got, err := ParseDomain(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseDomain(%q) = (%v, %v), want (%v, err=%v)", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestAction(t *testing.T) {
	if ActionCOS.String() != "cos" {
		t.Errorf("ActionCOS.String() = %q", ActionCOS.String())
	}
	if Action(4).Valid() {
		t.Error("Action(4).Valid() = true, want false")
	}
}
