package main

import (
	"context"
	"fmt"

	"github.com/pageflow/internal/db"
	"github.com/pageflow/internal/rbac"
	"github.com/pageflow/internal/service"
)

type demoAccount struct {
	username string
	password string
	role     rbac.Role
}

var demoAccounts = []demoAccount{
	{username: "admin", password: "admin123", role: rbac.RoleAdmin},
	{username: "checker", password: "checker123", role: rbac.RoleChecker},
	{username: "maker", password: "maker123", role: rbac.RoleMaker},
}

type demoPage struct {
	name     string
	markdown string
	pageType string
	css      string
	target   db.PageState
}

var demoPages = []demoPage{
	{
		name:     "Home",
		markdown: "# Home\n\nWelcome to the demo site.\n\n[About us](#about) and [Pricing](#pricing)",
		pageType: "landing",
		css:      "body { font-family: sans-serif; max-width: 48rem; margin: 0 auto; }",
		target:   db.StateLive,
	},
	{
		name:     "About us",
		markdown: "# About us\n\nWe build pages.\n\n[Home](#home)",
		pageType: "content",
		target:   db.StateLive,
	},
	{
		name:     "Pricing",
		markdown: "# Pricing\n\n| Plan | Price |\n| --- | --- |\n| Free | 0 |\n| Team | 20 |",
		pageType: "content",
		target:   db.StateApproved,
	},
	{
		name:     "Careers",
		markdown: "# Careers\n\nNo openings right now.",
		pageType: "content",
		target:   db.StatePendingApproval,
	},
	{
		name:     "Spring sale",
		markdown: "# Spring sale\n\nAll plans half price.",
		pageType: "campaign",
		target:   db.StateExpired,
	},
	{
		name:     "Roadmap",
		markdown: "# Roadmap\n\nComing soon.",
		pageType: "content",
		target:   db.StateDraft,
	},
}

var demoLinks = []struct {
	from, to, trigger string
}{
	{from: "Home", to: "About us", trigger: "About us"},
	{from: "Home", to: "Pricing", trigger: "Pricing"},
	{from: "About us", to: "Home", trigger: "Home"},
}

type seedReport struct {
	users int
	pages int
	links int
}

// seed 生成演示账号、页面和链接，已有页面时跳过页面部分
func seed(ctx context.Context, services *service.Services) (seedReport, error) {
	var report seedReport
	for _, account := range demoAccounts {
		created, err := services.Users.EnsureUser(ctx, account.username, account.password, account.role)
		if err != nil {
			return report, fmt.Errorf("seed user %s: %w", account.username, err)
		}
		if created {
			report.users++
		}
	}

	existing, err := services.Pages.ListPages(ctx)
	if err != nil {
		return report, err
	}
	if len(existing) > 0 {
		return report, nil
	}

	maker, err := services.Users.Authenticate(ctx, "maker", "maker123")
	if err != nil {
		return report, fmt.Errorf("load maker: %w", err)
	}
	checker, err := services.Users.Authenticate(ctx, "checker", "checker123")
	if err != nil {
		return report, fmt.Errorf("load checker: %w", err)
	}

	ids := make(map[string]string, len(demoPages))
	for _, demo := range demoPages {
		page, err := services.Pages.ImportMarkdown(ctx, service.MarkdownImport{
			Name:     demo.name,
			Markdown: demo.markdown,
			PageType: demo.pageType,
		}, maker)
		if err != nil {
			return report, fmt.Errorf("seed page %s: %w", demo.name, err)
		}
		if demo.css != "" {
			css := demo.css
			if _, err := services.Pages.UpdatePage(ctx, page.ID, service.PageUpdate{CSS: &css}, maker); err != nil {
				return report, err
			}
		}
		if err := advance(ctx, services.Pages, page.ID, demo.target, maker, checker); err != nil {
			return report, fmt.Errorf("advance page %s: %w", demo.name, err)
		}
		ids[demo.name] = page.ID
		report.pages++
	}

	for _, demo := range demoLinks {
		trigger := demo.trigger
		if _, err := services.Links.CreateLink(ctx, service.LinkInput{
			FromPageID:  ids[demo.from],
			ToPageID:    ids[demo.to],
			TriggerText: &trigger,
		}, maker); err != nil {
			return report, fmt.Errorf("seed link %s -> %s: %w", demo.from, demo.to, err)
		}
		report.links++
	}
	return report, nil
}

// advance 沿正常审批流把页面推进到目标状态
func advance(ctx context.Context, pages *service.PageService, id string, target db.PageState, maker, checker service.Actor) error {
	if target == db.StateDraft {
		return nil
	}
	if _, err := pages.SubmitForApproval(ctx, id, maker); err != nil {
		return err
	}
	if target == db.StatePendingApproval {
		return nil
	}
	if _, err := pages.Approve(ctx, id, checker); err != nil {
		return err
	}
	if target == db.StateApproved {
		return nil
	}
	if _, err := pages.Publish(ctx, id, maker); err != nil {
		return err
	}
	if target == db.StateExpired {
		_, err := pages.MarkExpired(ctx, id, maker)
		return err
	}
	return nil
}
