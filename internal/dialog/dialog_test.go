package dialog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestYesOrNo(t *testing.T) {
	cases := []struct {
		statement string
		want      string
	}{
		{"yes", "yes"},
		{"Yes please", "yes"},
		{"absolutely, go for it", "yes"},
		{"sure thing", "yes"},
		{"no", "no"},
		{"Nope, busy right now", "no"},
		{"not now", "no"},
		{"sorry, can't", "no"},
		// Refusals win over agreements.
		{"sorry, yes ok", "no"},
		// Word boundaries: "yesterday" is not a yes.
		{"I did it yesterday", ""},
		{"maybe later", ""},
		{"", ""},
	}
	for _, tc := range cases {
		t.Run(tc.statement, func(t *testing.T) {
			require.Equal(t, tc.want, YesOrNo(tc.statement))
		})
	}
}

func TestPlural(t *testing.T) {
	cases := []struct {
		noun string
		want string
	}{
		{"banana", "bananas"},
		{"tin", "tins"},
		{"box", "boxes"},
		{"glass", "glasses"},
		{"berry", "berries"},
		{"day", "days"},
		{"", ""},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Plural(tc.noun), "plural of %q", tc.noun)
	}
}

func TestPhrasePickersReturnSomething(t *testing.T) {
	require.NotEmpty(t, Greeting())
	require.NotEmpty(t, GenericReply())
}
