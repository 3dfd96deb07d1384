package critique

import "testing"

func TestClassifyExactMatchIsIdentity(t *testing.T) {
	t.Parallel()
	tax := NewTaxonomy()
	for _, s := range tax.Entries() {
		if got := tax.Classify(s); got != s {
			t.Fatalf("classify(%q): got=%q want=%q", s, got, s)
		}
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()
	tax := NewTaxonomy()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"case insensitive", "Oil Painting", "oil painting"},
		{"trimmed", "  watercolor \n", "watercolor"},
		{"substring", "a loose watercolor study", "watercolor"},
		{"substring taxonomy order", "digital oil painting", "oil painting"},
		{"photorealism before realism", "photorealism", "photorealism"},
		{"token with punctuation", "sketch!", "sketch"},
		{"unknown", "something entirely different", FallbackStyle},
		{"empty", "", FallbackStyle},
		{"fallback is a member", "mixed media", FallbackStyle},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tax.Classify(tc.in); got != tc.want {
				t.Fatalf("classify(%q): got=%q want=%q", tc.in, got, tc.want)
			}
		})
	}

	if tax.Classify("Oil Painting") != tax.Classify("oil painting") {
		t.Fatalf("classify must not depend on case")
	}
}

func TestFromNarrative(t *testing.T) {
	t.Parallel()
	tax := NewTaxonomy()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"this is a piece", "This is a watercolor piece with loose brushwork", "watercolor"},
		{"style is", "The overall style is impressionism with bold strokes.", "impressionism"},
		{"follows the style", "The work follows the art nouveau tradition closely.", "art nouveau"},
		{"technique typical of", "It uses a technique typical of the baroque period.", "baroque"},
		{"in the style", "Rendered in a pixel art style with a limited palette.", "pixel art"},
		{"reminiscent of", "The mood is reminiscent of surrealism.", "surrealism"},
		{"first rule wins", "This is a charcoal drawing. The style is cubism.", "cubism"},
		{"keyword fallback", "A quick sketch of a cat.", "sketch"},
		{"keyword fallback unknown label", "Lovely digital colors.", FallbackStyle},
		{"nothing", "Nice work overall.", FallbackStyle},
		{"empty", "", FallbackStyle},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := tax.FromNarrative(tc.in)
			if got != tc.want {
				t.Fatalf("narrative(%q): got=%q want=%q", tc.in, got, tc.want)
			}
			if !tax.Contains(got) {
				t.Fatalf("narrative(%q) returned %q which is outside the taxonomy", tc.in, got)
			}
		})
	}
}

func TestTaxonomyCopiesAreIndependent(t *testing.T) {
	t.Parallel()
	tax := NewTaxonomy()
	entries := tax.Entries()
	entries[0] = "tampered"
	fams := tax.Families()
	fams[0].Styles[0] = "tampered"

	if tax.Entries()[0] == "tampered" || tax.Families()[0].Styles[0] == "tampered" {
		t.Fatalf("taxonomy must not be mutable through its accessors")
	}
}
