// Copyright 2026 The LocalSim Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

var fakeEpoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestFakeNowStandsStill(t *testing.T) {
	clk := Fake(fakeEpoch)
	if got := clk.Now(); !got.Equal(fakeEpoch) {
		t.Errorf("Now() = %v, want %v", got, fakeEpoch)
	}
	if got := clk.Now(); !got.Equal(fakeEpoch) {
		t.Errorf("second Now() = %v, want %v (time must not flow)", got, fakeEpoch)
	}
}

func TestFakeAdvance(t *testing.T) {
	clk := Fake(fakeEpoch)
	clk.Advance(90 * time.Second)
	want := fakeEpoch.Add(90 * time.Second)
	if got := clk.Now(); !got.Equal(want) {
		t.Errorf("Now() after Advance = %v, want %v", got, want)
	}
}

func TestFakeAfterFiresOnAdvance(t *testing.T) {
	clk := Fake(fakeEpoch)
	ch := clk.After(time.Minute)

	select {
	case <-ch:
		t.Fatal("After fired before Advance")
	default:
	}

	clk.Advance(30 * time.Second)
	select {
	case <-ch:
		t.Fatal("After fired before its deadline")
	default:
	}

	clk.Advance(30 * time.Second)
	select {
	case fired := <-ch:
		want := fakeEpoch.Add(time.Minute)
		if !fired.Equal(want) {
			t.Errorf("After delivered %v, want %v", fired, want)
		}
	default:
		t.Fatal("After did not fire at its deadline")
	}
}

func TestFakeAfterZeroFiresImmediately(t *testing.T) {
	clk := Fake(fakeEpoch)
	select {
	case <-clk.After(0):
	default:
		t.Fatal("After(0) did not fire immediately")
	}
}
