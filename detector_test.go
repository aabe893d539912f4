package collide

import "testing"

func TestCombineQuery(t *testing.T) {
	cases := []struct {
		a, b          QueryType
		wantKind      InteractionKind
		wantThreshold float64
	}{
		{Contacts(0.1), Contacts(0.2), InteractionContact, 0.3},
		{Contacts(0.1), ProximityQuery(0.2), InteractionProximity, 0.3},
		{ProximityQuery(0.1), Contacts(0.2), InteractionProximity, 0.3},
		{ProximityQuery(0.1), ProximityQuery(0.2), InteractionProximity, 0.3},
	}

	for _, tc := range cases {
		kind, threshold := CombineQuery(tc.a, tc.b)
		if kind != tc.wantKind || threshold != tc.wantThreshold {
			t.Errorf("%v+%v: got %v %v, want %v %v",
				tc.a.Kind(), tc.b.Kind(), kind, threshold, tc.wantKind, tc.wantThreshold)
		}
	}
}
