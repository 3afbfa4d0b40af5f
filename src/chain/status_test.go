// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

package chain

import "testing"

func TestStatusString(t *testing.T) {
	cases := map[Status]string{
		SUCCESS:              "SUCCESS",
		ALREADY_EXISTS:       "ALREADY_EXISTS",
		ORPHANED:             "ORPHANED",
		INVALID:              "INVALID",
		TRANSACTIONS_MISSING: "TRANSACTIONS_MISSING",
		Status(99):           "UNKNOWN",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", status, got, want)
		}
	}
}

func TestChainTypeValues(t *testing.T) {
	if Candidate == Confirmed {
		t.Fatalf("Candidate and Confirmed must be distinct values")
	}
}
