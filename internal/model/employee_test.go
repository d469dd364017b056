package model

import (
	"testing"
	"time"
)

func TestEmployee_Status(t *testing.T) {
	e := &Employee{}
	if e.Status() != StatusActive {
		t.Errorf("期望 active，实际=%s", e.Status())
	}

	now := time.Now()
	e.DeletedAt = &now
	if e.Status() != StatusTrashed {
		t.Errorf("期望 trashed，实际=%s", e.Status())
	}
}

func TestEmployee_HasPhoto(t *testing.T) {
	empty := ""
	key := "employees/photos/a.png"

	cases := []struct {
		photo *string
		want  bool
	}{
		{nil, false},
		{&empty, false},
		{&key, true},
	}
	for _, c := range cases {
		e := &Employee{Photo: c.photo}
		if got := e.HasPhoto(); got != c.want {
			t.Errorf("HasPhoto()=%v, want %v", got, c.want)
		}
	}
}
