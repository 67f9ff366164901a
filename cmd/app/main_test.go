package main

import "testing"

func TestInvalidationGroup(t *testing.T) {
	if g := invalidationGroup("blog-cache-invalidator", true, "pod-a"); g != "blog-cache-invalidator" {
		t.Fatalf("shared cache group = %q", g)
	}
	a := invalidationGroup("blog-cache-invalidator", false, "pod-a")
	b := invalidationGroup("blog-cache-invalidator", false, "pod-b")
	if a == b || a != "blog-cache-invalidator-pod-a" {
		t.Fatalf("per-instance groups = %q, %q", a, b)
	}
}
