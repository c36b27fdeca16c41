package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCreateLinkRequiresBothPages(t *testing.T) {
	env := setupPageServiceTest(t)
	ctx := context.Background()
	home := env.createPage(t, "Home", "")

	_, err := env.links.CreateLink(ctx, LinkInput{FromPageID: home.ID, ToPageID: "missing"}, maker)
	if !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound, got %v", err)
	}

	all, err := env.links.ListLinks(ctx)
	if err != nil {
		t.Fatalf("ListLinks returned error: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected no links, got %d", len(all))
	}
}

func TestCreateLinkDefaultsAndValidation(t *testing.T) {
	env := setupPageServiceTest(t)
	ctx := context.Background()
	home := env.createPage(t, "Home", "")
	about := env.createPage(t, "About", "")

	link, err := env.links.CreateLink(ctx, LinkInput{
		FromPageID:  home.ID,
		ToPageID:    about.ID,
		TriggerText: ptr(" About us "),
	}, maker)
	if err != nil {
		t.Fatalf("CreateLink returned error: %v", err)
	}
	if link.LinkType != "button" {
		t.Fatalf("expected default link type button, got %q", link.LinkType)
	}
	if link.TriggerText == nil || *link.TriggerText != "About us" {
		t.Fatalf("unexpected trigger text %v", link.TriggerText)
	}

	_, err = env.links.CreateLink(ctx, LinkInput{FromPageID: home.ID, ToPageID: about.ID, LinkType: "portal"}, maker)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for unknown type, got %v", err)
	}
	_, err = env.links.CreateLink(ctx, LinkInput{ToPageID: about.ID}, maker)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for missing source, got %v", err)
	}
}

func TestLinksByPageIncludeBothDirections(t *testing.T) {
	env := setupPageServiceTest(t)
	ctx := context.Background()
	a := env.createPage(t, "A", "")
	b := env.createPage(t, "B", "")
	c := env.createPage(t, "C", "")

	for _, input := range []LinkInput{
		{FromPageID: a.ID, ToPageID: b.ID},
		{FromPageID: b.ID, ToPageID: c.ID},
		{FromPageID: a.ID, ToPageID: c.ID},
	} {
		if _, err := env.links.CreateLink(ctx, input, maker); err != nil {
			t.Fatalf("CreateLink returned error: %v", err)
		}
	}

	touching, err := env.links.GetLinksByPage(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetLinksByPage returned error: %v", err)
	}
	if len(touching) != 2 {
		t.Fatalf("expected 2 links touching B, got %d", len(touching))
	}

	outgoing, err := env.links.OutgoingLinks(ctx, a.ID)
	if err != nil {
		t.Fatalf("OutgoingLinks returned error: %v", err)
	}
	if len(outgoing) != 2 {
		t.Fatalf("expected 2 outgoing links from A, got %d", len(outgoing))
	}
}

func TestDeleteLink(t *testing.T) {
	env := setupPageServiceTest(t)
	ctx := context.Background()
	a := env.createPage(t, "A", "")
	b := env.createPage(t, "B", "")

	link, err := env.links.CreateLink(ctx, LinkInput{FromPageID: a.ID, ToPageID: b.ID}, maker)
	if err != nil {
		t.Fatalf("CreateLink returned error: %v", err)
	}

	deleted, err := env.links.DeleteLink(ctx, link.ID, maker)
	if err != nil || !deleted {
		t.Fatalf("expected link deleted, got %v (%v)", deleted, err)
	}
	deleted, err = env.links.DeleteLink(ctx, link.ID, maker)
	if err != nil || deleted {
		t.Fatalf("expected second delete to report false, got %v (%v)", deleted, err)
	}
	if _, err := env.links.GetLink(ctx, link.ID); !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("expected ErrLinkNotFound, got %v", err)
	}
}

func TestDeleteLinkWaitsForSourcePage(t *testing.T) {
	env := setupPageServiceTest(t)
	ctx := context.Background()
	a := env.createPage(t, "A", "")
	b := env.createPage(t, "B", "")

	link, err := env.links.CreateLink(ctx, LinkInput{FromPageID: a.ID, ToPageID: b.ID}, maker)
	if err != nil {
		t.Fatalf("CreateLink returned error: %v", err)
	}

	unlock := env.pages.locks.Lock(a.ID)
	done := make(chan error, 1)
	go func() {
		_, err := env.links.DeleteLink(ctx, link.ID, maker)
		done <- err
	}()

	select {
	case err := <-done:
		unlock()
		t.Fatalf("expected delete to wait for the source page, returned %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	if _, err := env.links.GetLink(ctx, link.ID); err != nil {
		unlock()
		t.Fatalf("expected link to survive while the page is held: %v", err)
	}
	unlock()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("DeleteLink returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("DeleteLink did not finish after the page was released")
	}
	if _, err := env.links.GetLink(ctx, link.ID); !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("expected ErrLinkNotFound, got %v", err)
	}
}
