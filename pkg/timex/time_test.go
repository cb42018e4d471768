package timex

import (
	"testing"
	"time"
)

func TestTime_UnixMethods(t *testing.T) {
	// Create a fixed time
	// 创建一个固定时间
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tt := Time(now)

	if tt.Unix() != now.Unix() {
		t.Errorf("Unix() = %v, want %v", tt.Unix(), now.Unix())
	}
	if tt.UnixMilli() != now.UnixMilli() {
		t.Errorf("UnixMilli() = %v, want %v", tt.UnixMilli(), now.UnixMilli())
	}
	if tt.UnixMicro() != now.UnixMicro() {
		t.Errorf("UnixMicro() = %v, want %v", tt.UnixMicro(), now.UnixMicro())
	}
	if tt.UnixNano() != now.UnixNano() {
		t.Errorf("UnixNano() = %v, want %v", tt.UnixNano(), now.UnixNano())
	}

	// Verify it's not returning time.Now() by waiting a bit
	// 通过等待一会确认它不是返回 time.Now()
	time.Sleep(10 * time.Millisecond)
	if tt.Unix() != now.Unix() {
		t.Errorf("Unix() changed after sleep, it should be static. got %v, want %v", tt.Unix(), now.Unix())
	}
}

func TestTime_AddAndCompare(t *testing.T) {
	base := Time(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	later := base.Add(time.Hour)

	if !base.Before(later) {
		t.Errorf("Before() = false, want true")
	}
	if !later.After(base) {
		t.Errorf("After() = false, want true")
	}
	if later.Unix()-base.Unix() != 3600 {
		t.Errorf("Add(1h) moved %v seconds, want 3600", later.Unix()-base.Unix())
	}
}

func TestTime_JSONRoundTrip(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 30, 0, 0, time.Local)
	tt := Time(now)

	data, err := tt.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() err = %v", err)
	}
	if string(data) != `"2024-06-15 09:30:00"` {
		t.Errorf("MarshalJSON() = %s", data)
	}

	var back Time
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON() err = %v", err)
	}
	if back.Unix() != tt.Unix() {
		t.Errorf("round trip changed value: got %v, want %v", back.Unix(), tt.Unix())
	}
}

func TestTime_ZeroMarshal(t *testing.T) {
	var tt Time
	data, err := tt.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() err = %v", err)
	}
	if string(data) != `""` {
		t.Errorf("zero time MarshalJSON() = %s, want \"\"", data)
	}
}
