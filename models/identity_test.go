package models

import (
	"testing"

	"bitbucket.org/mmdatafocus/resmatch_backend/config"
)

func TestNormalize_CollapsesAliases(t *testing.T) {
	n := NewIdentityNormalizer(config.DefaultVocabulary())

	cases := []struct {
		in       string
		expected string
	}{
		{"平哥", "平和"},
		{"平和", "平和"},
		{"刘", "刘霞"},
		{"刘霞", "刘霞"},
		{"周", "周思玗"},
		{"周思玗", "周思玗"},
		{"sk", "SK"},
		{"Sk", "SK"},
		{"SK", "SK"},
		{"  平哥  ", "平和"},
		{"张三", "张三"},
		{"  张三 ", "张三"},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range cases {
		if got := n.Normalize(tc.in); got != tc.expected {
			t.Fatalf("Normalize(%q) expected %q, got %q", tc.in, tc.expected, got)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	n := NewIdentityNormalizer(config.DefaultVocabulary())

	inputs := []string{"平哥", "刘", "sk", "周思玗", "张三", "", "  SK  "}
	for _, in := range inputs {
		once := n.Normalize(in)
		twice := n.Normalize(once)
		if once != twice {
			t.Fatalf("Normalize not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}

func TestExpandSearchTerm_CoversAliasGroup(t *testing.T) {
	n := NewIdentityNormalizer(config.DefaultVocabulary())

	terms := n.ExpandSearchTerm("平哥")
	want := map[string]bool{"平和": false, "平哥": false}
	for _, term := range terms {
		if _, ok := want[term]; ok {
			want[term] = true
		}
	}
	for term, seen := range want {
		if !seen {
			t.Fatalf("ExpandSearchTerm(平哥) missing %q, got %v", term, terms)
		}
	}

	if terms := n.ExpandSearchTerm("张三"); len(terms) != 1 || terms[0] != "张三" {
		t.Fatalf("ExpandSearchTerm(张三) expected passthrough, got %v", terms)
	}
	if terms := n.ExpandSearchTerm("  "); terms != nil {
		t.Fatalf("ExpandSearchTerm(blank) expected nil, got %v", terms)
	}
}
