package scoring

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore_ExactMatchIsFullAccuracy(t *testing.T) {
	prompts := []string{
		"the code is fast",
		"a",
		"merhaba dünya çok güzel",
		"привет как дела",
	}
	for _, p := range prompts {
		r := Score(p, p, 7.5)
		assert.Equal(t, 100, r.Accuracy, p)
		assert.Equal(t, r.RawWPM, r.WPM, p)
	}
}

func TestScore_Examples(t *testing.T) {
	cases := []struct {
		name    string
		prompt  string
		text    string
		elapsed float64
		want    Result
	}{
		{
			// 16 runes: (16/5)/(6/60) = 32
			name: "exact match", prompt: "the code is fast", text: "the code is fast", elapsed: 6,
			want: Result{WPM: 32, RawWPM: 32, Accuracy: 100},
		},
		{
			name: "surrounding whitespace ignored", prompt: " the code is fast ", text: "the code is fast\n", elapsed: 6,
			want: Result{WPM: 32, RawWPM: 32, Accuracy: 100},
		},
		{
			// 12 of 16 positions match
			name: "wrong tail", prompt: "the code is fast", text: "the code is XXXX", elapsed: 6,
			want: Result{WPM: 24, RawWPM: 32, Accuracy: 75},
		},
		{
			// trailing extra runes never count
			name: "long input", prompt: "abcde", text: "abcdeXYZ", elapsed: 12,
			want: Result{WPM: 5, RawWPM: 5, Accuracy: 100},
		},
		{
			name: "multibyte runes counted once", prompt: "çok", text: "cok", elapsed: 60,
			want: Result{WPM: 0, RawWPM: 1, Accuracy: 67},
		},
		{
			name: "zero elapsed gives zero speed", prompt: "abc", text: "abc", elapsed: 0,
			want: Result{WPM: 0, RawWPM: 0, Accuracy: 100},
		},
		{
			name: "empty prompt", prompt: "   ", text: "abc", elapsed: 5,
			want: Result{},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(tc.prompt, tc.text, tc.elapsed)
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestScore_Deterministic(t *testing.T) {
	first := Score("zoological zucchini", "zoological zuchini", 3.3)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Score("zoological zucchini", "zoological zuchini", 3.3))
	}
}

func TestMinimumLegitimateSeconds(t *testing.T) {
	assert.InDelta(t, 5*(60.0/216.0)+0.2, MinimumLegitimateSeconds(5), 1e-9)
	assert.InDelta(t, 1.5889, MinimumLegitimateSeconds(5), 1e-3)

	prev := MinimumLegitimateSeconds(1)
	for n := 2; n <= 100; n++ {
		cur := MinimumLegitimateSeconds(n)
		assert.Greater(t, cur, prev)
		prev = cur
	}
}

func TestCheck(t *testing.T) {
	prompt := "one two three four five"

	cases := []struct {
		name    string
		elapsed float64
		result  Result
		wantErr error
	}{
		{name: "too fast even when perfect", elapsed: 1.0, result: Result{WPM: 50, Accuracy: 100}, wantErr: ErrTooFast},
		{name: "over ceiling", elapsed: 30, result: Result{WPM: 250, RawWPM: 250, Accuracy: 100}, wantErr: ErrImplausibleSpeed},
		{name: "at ceiling", elapsed: 30, result: Result{WPM: MaxWPM, Accuracy: 100}},
		{name: "plausible", elapsed: 10, result: Result{WPM: 70, Accuracy: 100}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Check(prompt, tc.elapsed, tc.result)
			if tc.wantErr == nil && err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("want %v, got %v", tc.wantErr, err)
			}
			assert.Equal(t, tc.wantErr == nil, IsAcceptable(prompt, tc.elapsed, tc.result))
		})
	}
}
