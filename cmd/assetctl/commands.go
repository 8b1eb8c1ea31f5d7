package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/assetmgr/assetmgr/internal/hierarchy"
	"github.com/assetmgr/assetmgr/internal/integrity"
	"github.com/assetmgr/assetmgr/internal/seed"
)

// SeedCmd applies a YAML seed file.
type SeedCmd struct {
	File  string `arg:"" type:"existingfile" help:"Seed file to apply."`
	Force bool   `help:"Apply even when the file was applied before."`
	Actor string `default:"system:seed" help:"Actor recorded in the audit log."`
}

func (c *SeedCmd) Run(rt *runtime) error {
	loader, err := seed.NewLoader(rt.db, rt.svc.Catalog, rt.svc.Assets, rt.svc.Audit)
	if err != nil {
		return err
	}
	result, err := loader.ApplyFile(rt.ctx, c.Actor, c.File, c.Force)
	if err != nil {
		return err
	}
	if result.Skipped {
		fmt.Fprintf(rt.out, "seed %s already applied (fingerprint %s)\n", c.File, result.Fingerprint[:12])
		return nil
	}
	fmt.Fprintf(rt.out, "applied %d folders, %d kinds, %d assets (%d existing)\n",
		result.Folders, result.Kinds, result.Assets, result.ExistingAsset)
	return nil
}

// TreeCmd prints the folder and kind tree of a module.
type TreeCmd struct {
	Module string `short:"m" help:"Module to print. Defaults to the configured module."`
	All    bool   `help:"Print every module."`
}

func (c *TreeCmd) Run(rt *runtime) error {
	snapshot, err := rt.svc.Hierarchy.Rebuild(rt.ctx)
	if err != nil {
		return err
	}

	modules := []string{rt.module(c.Module)}
	if c.All {
		modules = snapshot.Manager.Modules()
	}
	for _, module := range modules {
		if err := hierarchy.RenderText(rt.out, module, snapshot.Manager.ModuleTree(module)); err != nil {
			return err
		}
	}

	report := snapshot.Report
	if !report.Clean() {
		fmt.Fprintf(rt.out, "\n%d dropped, %d duplicates, %d dangling, %d cross-module, %d cycles\n",
			report.Dropped, len(report.Duplicates), len(report.Dangling), len(report.CrossModule), len(report.Cycles))
	}
	return nil
}

// RollupCmd prints status counts for the children of a node.
type RollupCmd struct {
	Module string `short:"m" help:"Module to summarise. Defaults to the configured module."`
	Parent string `short:"p" help:"Node whose children are listed. Defaults to the module roots."`
}

func (c *RollupCmd) Run(rt *runtime) error {
	if _, err := rt.svc.Hierarchy.Rebuild(rt.ctx); err != nil {
		return err
	}
	view, err := rt.svc.Dashboard.View(rt.ctx, rt.module(c.Module), c.Parent)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(rt.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NODE\tTOTAL\tIN USE\tIN STORE\tIN REPAIR\tOTHER")
	for _, card := range view.Cards {
		fmt.Fprintf(tw, "%s %s\t%d\t%d\t%d\t%d\t%d\n", card.Icon, card.Name,
			card.Counts.Total, card.Counts.InUse, card.Counts.InStore, card.Counts.InRepair, card.Counts.Other)
	}
	fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\n", "TOTAL",
		view.Totals.Total, view.Totals.InUse, view.Totals.InStore, view.Totals.InRepair, view.Totals.Other)
	return tw.Flush()
}

// CheckCmd runs the integrity audit and fails when any check fails.
type CheckCmd struct{}

func (c *CheckCmd) Run(rt *runtime) error {
	if _, err := rt.svc.Hierarchy.Rebuild(rt.ctx); err != nil {
		return err
	}
	result := integrity.NewAuditor(rt.db, rt.svc.Hierarchy).Run(rt.ctx)

	tw := tabwriter.NewWriter(rt.out, 0, 4, 2, ' ', 0)
	for _, check := range result.Checks {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", check.Status, check.ID, check.Message)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if result.Failed() {
		return errors.New("integrity checks failed")
	}
	return nil
}
