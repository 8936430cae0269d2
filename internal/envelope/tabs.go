package envelope

import "strconv"

// AnchorConfig positions tabs relative to their anchor text.
type AnchorConfig struct {
	XOffset string
	YOffset string
	Units   string
}

// DefaultAnchorConfig returns the stock anchor placement: directly on the
// anchor text, nudged 27 pixels up.
func DefaultAnchorConfig() AnchorConfig {
	return AnchorConfig{XOffset: "0", YOffset: "-27", Units: "pixels"}
}

// PlaceSigningTabs assigns every signer across both recipient collections
// one signature tab and one date tab, anchored on "{role} Signature" and
// "{role} Date". Existing tab sets are replaced. The input is not
// mutated; callers use the returned set.
func PlaceSigningTabs(r Recipients, documentID int, anchor *AnchorConfig) Recipients {
	cfg := DefaultAnchorConfig()
	if anchor != nil {
		cfg = *anchor
	}
	docID := strconv.Itoa(documentID)

	out := Recipients{
		Signers:         make([]Signer, len(r.Signers)),
		InPersonSigners: make([]InPersonSigner, len(r.InPersonSigners)),
	}
	for i, s := range r.Signers {
		s.Tabs = tabsForRole(s.RoleName, docID, cfg)
		out.Signers[i] = s
	}
	for i, s := range r.InPersonSigners {
		s.Tabs = tabsForRole(s.RoleName, docID, cfg)
		out.InPersonSigners[i] = s
	}
	return out
}

func tabsForRole(role, docID string, cfg AnchorConfig) *Tabs {
	return &Tabs{
		SignHereTabs: []SignHereTab{{
			DocumentID:    docID,
			AnchorString:  role + " Signature",
			AnchorXOffset: cfg.XOffset,
			AnchorYOffset: cfg.YOffset,
			AnchorUnits:   cfg.Units,
		}},
		DateSignedTabs: []DateSignedTab{{
			DocumentID:    docID,
			AnchorString:  role + " Date",
			AnchorXOffset: cfg.XOffset,
			AnchorYOffset: cfg.YOffset,
			AnchorUnits:   cfg.Units,
		}},
	}
}
