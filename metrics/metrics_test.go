package metrics

import "testing"

func TestCounter(t *testing.T) {
	m := New()
	c := m.Counter("x")
	c.Incr()
	c.Add(4)
	if got := c.Value(); got != 5 {
		t.Fatalf("Value() = %d, want 5", got)
	}
}

func TestHistogram(t *testing.T) {
	m := New()
	h := m.Histogram("x")
	h.Update(10)
	h.Update(30)
	h.Update(20)
	v := h.Value()
	if v["count"].(int64) != 3 {
		t.Fatalf("count = %v, want 3", v["count"])
	}
	if v["min"].(int64) != 10 || v["max"].(int64) != 30 {
		t.Fatalf("min/max = %v/%v, want 10/30", v["min"], v["max"])
	}
	if v["mean"].(int64) != 20 {
		t.Fatalf("mean = %v, want 20", v["mean"])
	}
}

func TestNewGlobalMetrics(t *testing.T) {
	cases := []struct {
		name    string
		wantErr bool
	}{
		{"", false},
		{ProviderName, false},
		{"bogus", true},
	}
	for _, c := range cases {
		gm, err := NewGlobalMetrics(c.name)
		if (err != nil) != c.wantErr {
			t.Errorf("NewGlobalMetrics(%q) err = %v, wantErr %v", c.name, err, c.wantErr)
			continue
		}
		if err == nil && gm == nil {
			t.Errorf("NewGlobalMetrics(%q) = nil provider", c.name)
		}
	}
}
