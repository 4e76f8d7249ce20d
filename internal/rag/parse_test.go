package rag

import "testing"

func TestParseModelAnswerValidJSON(t *testing.T) {
	raw := `{"answer":"the policy allows 20 days","confidence":0.8,"missing_info":["2023 figures"],"citations":[],"reasoning_summary":"ok","suggestions":["check hr portal"]}`
	result := parseModelAnswer(raw)
	if result.Parsed == nil {
		t.Fatalf("expected parsed answer")
	}
	if result.Parsed.Answer != "the policy allows 20 days" || result.Parsed.Confidence != 0.8 {
		t.Fatalf("unexpected parse: %+v", result.Parsed)
	}
	if len(result.Parsed.MissingInfo) != 1 || result.Parsed.MissingInfo[0] != "2023 figures" {
		t.Fatalf("missing_info not parsed: %+v", result.Parsed.MissingInfo)
	}
}

func TestParseModelAnswerCodeFence(t *testing.T) {
	raw := "```json\n{\"answer\":\"fenced\",\"confidence\":0.7}\n```"
	result := parseModelAnswer(raw)
	if result.Parsed == nil || result.Parsed.Answer != "fenced" {
		t.Fatalf("fenced json not parsed: %+v", result)
	}
}

func TestParseModelAnswerMalformed(t *testing.T) {
	raw := "The answer is plainly forty-two."
	result := parseModelAnswer(raw)
	if result.Parsed != nil {
		t.Fatalf("expected nil parse for prose")
	}
	if result.Raw != raw {
		t.Fatalf("raw text must be preserved: %q", result.Raw)
	}
}

func TestStripCodeFence(t *testing.T) {
	if got := stripCodeFence("```json\n{}\n```"); got != "{}" {
		t.Fatalf("unexpected fence strip: %q", got)
	}
	if got := stripCodeFence("{}"); got != "{}" {
		t.Fatalf("plain json changed: %q", got)
	}
}
