package utils

import (
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    logrus.Level
		wantErr bool
	}{
		{"debug", logrus.DebugLevel, false},
		{"WARN", logrus.WarnLevel, false},
		{"warning", logrus.WarnLevel, false},
		{"error", logrus.ErrorLevel, false},
		{"verbose", 0, true},
	}
	for _, tt := range tests {
		err := SetLogLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("SetLogLevel(%q) err = %v", tt.in, err)
		}
		if !tt.wantErr && Log.GetLevel() != tt.want {
			t.Errorf("SetLogLevel(%q) level = %s, want %s", tt.in, Log.GetLevel(), tt.want)
		}
	}
	SetLogLevel("info")
}

func TestSplitList(t *testing.T) {
	got := SplitList(" google, bing,,  amazon ,")
	if want := []string{"google", "bing", "amazon"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("SplitList = %q, want %q", got, want)
	}
	if SplitList("") != nil {
		t.Fatal("empty input should give nil")
	}
}
