package extract

import "testing"

func TestSplitSentences_Basic(t *testing.T) {
	text := "The market grew by 15% last year. Analysts expect further growth."

	sentences := SplitSentences(text)
	if len(sentences) != 2 {
		t.Fatalf("Expected 2 sentences, got %d", len(sentences))
	}
	if sentences[0].Text != "The market grew by 15% last year." {
		t.Errorf("Unexpected first sentence: %q", sentences[0].Text)
	}
	if sentences[1].Text != "Analysts expect further growth." {
		t.Errorf("Unexpected second sentence: %q", sentences[1].Text)
	}
}

func TestSplitSentences_OffsetsAreExact(t *testing.T) {
	text := "First sentence here. Second sentence follows."

	sentences := SplitSentences(text)
	if len(sentences) != 2 {
		t.Fatalf("Expected 2 sentences, got %d", len(sentences))
	}
	for _, s := range sentences {
		if text[s.Start:s.End] != s.Text {
			t.Errorf("Offsets do not slice back to text: %q vs %q", text[s.Start:s.End], s.Text)
		}
	}
}

func TestSplitSentences_AbbreviationsDoNotSplit(t *testing.T) {
	text := "Dr. Smith published the study in 2020. The results were clear."

	sentences := SplitSentences(text)
	if len(sentences) != 2 {
		t.Fatalf("Expected 2 sentences, got %d: %v", len(sentences), sentences)
	}
	if sentences[0].Text != "Dr. Smith published the study in 2020." {
		t.Errorf("Expected abbreviation to stay inside the sentence, got %q", sentences[0].Text)
	}
}

func TestSplitSentences_DecimalsDoNotSplit(t *testing.T) {
	text := "Inflation reached 3.5 percent in March. Prices stabilized later."

	sentences := SplitSentences(text)
	if len(sentences) != 2 {
		t.Fatalf("Expected 2 sentences, got %d", len(sentences))
	}
	if sentences[0].Text != "Inflation reached 3.5 percent in March." {
		t.Errorf("Expected decimal to stay inside the sentence, got %q", sentences[0].Text)
	}
}

func TestSplitSentences_InitialsDoNotSplit(t *testing.T) {
	text := "The paper by J. Smith was influential. It is cited widely."

	sentences := SplitSentences(text)
	if len(sentences) != 2 {
		t.Fatalf("Expected 2 sentences, got %d", len(sentences))
	}
}

func TestSplitSentences_ShortFragmentsDropped(t *testing.T) {
	text := "Ok. This sentence is long enough to keep."

	sentences := SplitSentences(text)
	if len(sentences) != 1 {
		t.Fatalf("Expected 1 sentence, got %d", len(sentences))
	}
	if sentences[0].Text != "This sentence is long enough to keep." {
		t.Errorf("Unexpected sentence kept: %q", sentences[0].Text)
	}
}

func TestSplitSentences_BlankLineTerminates(t *testing.T) {
	text := "A heading without punctuation\n\nA body sentence follows here."

	sentences := SplitSentences(text)
	if len(sentences) != 2 {
		t.Fatalf("Expected 2 sentences, got %d", len(sentences))
	}
	if sentences[0].Text != "A heading without punctuation" {
		t.Errorf("Expected blank line to terminate the heading, got %q", sentences[0].Text)
	}
}

func TestSplitSentences_LineNumbers(t *testing.T) {
	text := "First line sentence one.\nSecond line sentence two follows."

	sentences := SplitSentences(text)
	if len(sentences) != 2 {
		t.Fatalf("Expected 2 sentences, got %d", len(sentences))
	}
	if sentences[0].Line != 1 {
		t.Errorf("Expected first sentence on line 1, got %d", sentences[0].Line)
	}
	if sentences[1].Line != 2 {
		t.Errorf("Expected second sentence on line 2, got %d", sentences[1].Line)
	}
}
