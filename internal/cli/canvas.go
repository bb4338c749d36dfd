/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"gridshell/internal/canvas"
	"gridshell/internal/domain"
)

func addCanvas(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "canvas",
		Short: "Inspect and edit a tab's canvas.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	show := &cobra.Command{
		Use:   "show <tab-id>",
		Short: "Print the canvas state of a tab.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a, tab, err := openTab(args[0])
			if err != nil {
				return err
			}
			switch tab.Type {
			case domain.TabDynamic:
				d, err := a.openDynamicCanvas(tab)
				if err != nil {
					return err
				}
				printDynamic(d.State())
			case domain.TabStatic:
				s, err := canvas.OpenStatic(a.store, a.inv, tab)
				if err != nil {
					return err
				}
				printStatic(s)
			default:
				return fmt.Errorf("tab %s has unknown type %q", tab.ID, tab.Type)
			}
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <tab-id> <component-id>",
		Short: "Add a component to a dynamic canvas.",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			_, d, err := openDynamicTab(args[0])
			if err != nil {
				return err
			}
			inst, err := d.AddComponent(args[1])
			if err != nil {
				return err
			}
			if err := flushDynamic(d); err != nil {
				return err
			}
			fmt.Printf("Added %s as instance %s\n", inst.ComponentID, inst.ID)
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm <tab-id> <instance-id>",
		Short: "Remove a component instance from a dynamic canvas.",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			_, d, err := openDynamicTab(args[0])
			if err != nil {
				return err
			}
			if err := d.RemoveComponent(args[1]); err != nil {
				return err
			}
			if err := flushDynamic(d); err != nil {
				return err
			}
			fmt.Println("Removed instance", args[1])
			return nil
		},
	}

	place := &cobra.Command{
		Use:   "place <tab-id> <instance-id> <breakpoint> <x> <y> <w> <h>",
		Short: "Move or resize an instance within one breakpoint of a dynamic canvas.",
		Args:  cobra.ExactArgs(7),
		RunE: func(_ *cobra.Command, args []string) error {
			_, d, err := openDynamicTab(args[0])
			if err != nil {
				return err
			}
			g, err := parsePlacement(args[3:])
			if err != nil {
				return err
			}
			if err := d.Place(args[1], args[2], g); err != nil {
				return err
			}
			if err := flushDynamic(d); err != nil {
				return err
			}
			fmt.Printf("Placed %s at x=%d y=%d w=%d h=%d [%s]\n", args[1], g.X, g.Y, g.W, g.H, args[2])
			return nil
		},
	}

	var assignDryRun bool
	assign := &cobra.Command{
		Use:   "assign <tab-id> <slot-id> <component-id>",
		Short: "Assign a component to a static canvas slot.",
		Args:  cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			s, err := openStaticTab(args[0])
			if err != nil {
				return err
			}
			if err := s.AssignComponent(args[1], args[2]); err != nil {
				return err
			}
			return finishStatic(s, assignDryRun, fmt.Sprintf("Assigned %s to %s", args[2], args[1]))
		},
	}
	assign.Flags().BoolVar(&assignDryRun, "dry-run", false, "preview the result without saving")

	var moveDryRun bool
	move := &cobra.Command{
		Use:   "move <tab-id> <slot-id> <x> <y> <w> <h>",
		Short: "Move or resize a static canvas slot (percent coordinates).",
		Args:  cobra.ExactArgs(6),
		RunE: func(_ *cobra.Command, args []string) error {
			s, err := openStaticTab(args[0])
			if err != nil {
				return err
			}
			r, err := parseRect(args[2:])
			if err != nil {
				return err
			}
			if err := s.MoveSlot(args[1], r); err != nil {
				return err
			}
			return finishStatic(s, moveDryRun, "Moved slot "+args[1])
		},
	}
	move.Flags().BoolVar(&moveDryRun, "dry-run", false, "preview the result without saving")

	var addSlotLabel string
	var addSlotDryRun bool
	addSlot := &cobra.Command{
		Use:   "add-slot <tab-id> <x> <y> <w> <h>",
		Short: "Add a free-form slot to a static canvas.",
		Args:  cobra.ExactArgs(5),
		RunE: func(_ *cobra.Command, args []string) error {
			s, err := openStaticTab(args[0])
			if err != nil {
				return err
			}
			r, err := parseRect(args[1:])
			if err != nil {
				return err
			}
			slot, err := s.AddSlot(r, addSlotLabel)
			if err != nil {
				return err
			}
			return finishStatic(s, addSlotDryRun, "Added slot "+slot.ID)
		},
	}
	addSlot.Flags().StringVar(&addSlotLabel, "label", "", "display label for the slot")
	addSlot.Flags().BoolVar(&addSlotDryRun, "dry-run", false, "preview the result without saving")

	var rmSlotDryRun bool
	rmSlot := &cobra.Command{
		Use:   "rm-slot <tab-id> <slot-id>",
		Short: "Remove an unlocked slot from a static canvas.",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			s, err := openStaticTab(args[0])
			if err != nil {
				return err
			}
			if err := s.RemoveSlot(args[1]); err != nil {
				return err
			}
			return finishStatic(s, rmSlotDryRun, "Removed slot "+args[1])
		},
	}
	rmSlot.Flags().BoolVar(&rmSlotDryRun, "dry-run", false, "preview the result without saving")

	clear := &cobra.Command{
		Use:   "clear <tab-id> <slot-id>",
		Short: "Remove the component bound to a static canvas slot.",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			s, err := openStaticTab(args[0])
			if err != nil {
				return err
			}
			if err := s.ClearSlot(args[1]); err != nil {
				return err
			}
			return finishStatic(s, false, "Cleared slot "+args[1])
		},
	}

	save := &cobra.Command{
		Use:   "save <tab-id>",
		Short: "Persist a static canvas, including the starter template of a fresh tab.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			s, err := openStaticTab(args[0])
			if err != nil {
				return err
			}
			if err := s.Save(); err != nil {
				return err
			}
			fmt.Println("Saved canvas for tab", args[0])
			return nil
		},
	}

	apply := &cobra.Command{
		Use:   "apply <tab-id> <ops-file>",
		Short: "Run a batch of canvas edits from a JSON ops file.",
		Long: "Applies a JSON array of operations in a single session.\n" +
			"Dynamic tabs accept add, rm, place and undo; static tabs accept\n" +
			"assign, clear, move, add-slot, rm-slot, save and revert. A static\n" +
			"batch that ends without a save discards its changes.",
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return runCanvasApply(args[0], args[1])
		},
	}

	cmd.AddCommand(show, add, rm, place, assign, move, addSlot, rmSlot, clear, save, apply)
	topLevel.AddCommand(cmd)
}

// openTab loads the workspace and finds a tab of the current layout by id.
func openTab(tabID string) (*app, domain.Tab, error) {
	a, err := openApp()
	if err != nil {
		return nil, domain.Tab{}, err
	}
	if err := a.loadWorkspace(); err != nil {
		return nil, domain.Tab{}, err
	}
	cur, err := a.mgr.Current()
	if err != nil {
		return nil, domain.Tab{}, err
	}
	for _, t := range cur.Tabs {
		if t.ID == tabID {
			return a, t, nil
		}
	}
	return nil, domain.Tab{}, fmt.Errorf("tab %q not found in the current layout", tabID)
}

// openDynamicCanvas opens the grid canvas with undo history attached and the
// configured autosave mode.
func (a *app) openDynamicCanvas(tab domain.Tab) (*canvas.Dynamic, error) {
	d, err := canvas.OpenDynamic(a.store, a.inv, a.mgr, tab)
	if err != nil {
		return nil, err
	}
	d.AttachHistory(a.history)
	if !a.cfg.Workspace.AutosaveEnabled() {
		d.SetAutosave(false)
	}
	return d, nil
}

func openDynamicTab(tabID string) (*app, *canvas.Dynamic, error) {
	a, tab, err := openTab(tabID)
	if err != nil {
		return nil, nil, err
	}
	if tab.Type != domain.TabDynamic {
		return nil, nil, fmt.Errorf("tab %s is not a dynamic tab", tab.ID)
	}
	d, err := a.openDynamicCanvas(tab)
	if err != nil {
		return nil, nil, err
	}
	return a, d, nil
}

func openStaticTab(tabID string) (*canvas.Static, error) {
	a, tab, err := openTab(tabID)
	if err != nil {
		return nil, err
	}
	if tab.Type != domain.TabStatic {
		return nil, fmt.Errorf("tab %s is not a static tab", tab.ID)
	}
	return canvas.OpenStatic(a.store, a.inv, tab)
}

// flushDynamic writes deferred mutations before the process exits. A no-op
// while autosave is on.
func flushDynamic(d *canvas.Dynamic) error {
	if d.HasUnsavedChanges() {
		return d.Save()
	}
	return nil
}

// finishStatic either saves the canvas or, on a dry run, prints the would-be
// result and drops it.
func finishStatic(s *canvas.Static, dryRun bool, msg string) error {
	if dryRun {
		printStatic(s)
		fmt.Println("Dry run, nothing saved.")
		return nil
	}
	if err := s.Save(); err != nil {
		return err
	}
	fmt.Println(msg)
	return nil
}

// canvasOp is one step of a canvas apply batch.
type canvasOp struct {
	Op         string  `json:"op"`
	Component  string  `json:"component,omitempty"`
	Instance   string  `json:"instance,omitempty"`
	Slot       string  `json:"slot,omitempty"`
	Breakpoint string  `json:"breakpoint,omitempty"`
	Label      string  `json:"label,omitempty"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	W          float64 `json:"w"`
	H          float64 `json:"h"`
}

func runCanvasApply(tabID, opsPath string) error {
	data, err := os.ReadFile(opsPath)
	if err != nil {
		return err
	}
	var ops []canvasOp
	if err := json.Unmarshal(data, &ops); err != nil {
		return fmt.Errorf("parse ops file: %w", err)
	}
	a, tab, err := openTab(tabID)
	if err != nil {
		return err
	}
	switch tab.Type {
	case domain.TabDynamic:
		d, err := a.openDynamicCanvas(tab)
		if err != nil {
			return err
		}
		for i, op := range ops {
			if err := applyDynamicOp(d, op); err != nil {
				return fmt.Errorf("op %d (%s): %w", i+1, op.Op, err)
			}
		}
		if err := flushDynamic(d); err != nil {
			return err
		}
		fmt.Printf("Applied %d ops to tab %s\n", len(ops), tabID)
	case domain.TabStatic:
		s, err := canvas.OpenStatic(a.store, a.inv, tab)
		if err != nil {
			return err
		}
		for i, op := range ops {
			if err := applyStaticOp(s, op); err != nil {
				return fmt.Errorf("op %d (%s): %w", i+1, op.Op, err)
			}
		}
		if s.HasUnsavedChanges() {
			fmt.Println("Batch ended without a save op; discarding unsaved changes.")
			return nil
		}
		fmt.Printf("Applied %d ops to tab %s\n", len(ops), tabID)
	default:
		return fmt.Errorf("tab %s has unknown type %q", tab.ID, tab.Type)
	}
	return nil
}

func applyDynamicOp(d *canvas.Dynamic, op canvasOp) error {
	switch op.Op {
	case "add":
		_, err := d.AddComponent(op.Component)
		return err
	case "rm":
		return d.RemoveComponent(op.Instance)
	case "place":
		return d.Place(op.Instance, op.Breakpoint, domain.GridPlacement{
			X: int(op.X), Y: int(op.Y), W: int(op.W), H: int(op.H),
		})
	case "undo":
		return d.Undo()
	default:
		return fmt.Errorf("unknown dynamic op %q", op.Op)
	}
}

func applyStaticOp(s *canvas.Static, op canvasOp) error {
	rect := domain.SlotRect{X: op.X, Y: op.Y, Width: op.W, Height: op.H}
	switch op.Op {
	case "assign":
		return s.AssignComponent(op.Slot, op.Component)
	case "clear":
		return s.ClearSlot(op.Slot)
	case "move":
		return s.MoveSlot(op.Slot, rect)
	case "add-slot":
		_, err := s.AddSlot(rect, op.Label)
		return err
	case "rm-slot":
		return s.RemoveSlot(op.Slot)
	case "save":
		return s.Save()
	case "revert":
		s.Revert()
		return nil
	default:
		return fmt.Errorf("unknown static op %q", op.Op)
	}
}

func parsePlacement(args []string) (domain.GridPlacement, error) {
	vals := make([]int, 4)
	for i, s := range args {
		n, err := strconv.Atoi(s)
		if err != nil {
			return domain.GridPlacement{}, fmt.Errorf("placement value %q: %w", s, err)
		}
		vals[i] = n
	}
	return domain.GridPlacement{X: vals[0], Y: vals[1], W: vals[2], H: vals[3]}, nil
}

func parseRect(args []string) (domain.SlotRect, error) {
	vals := make([]float64, 4)
	for i, s := range args {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return domain.SlotRect{}, fmt.Errorf("rect value %q: %w", s, err)
		}
		vals[i] = f
	}
	return domain.SlotRect{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}

func printDynamic(st domain.DynamicCanvasState) {
	fmt.Printf("Dynamic canvas for tab %s: %d components\n", st.TabID, len(st.Components))
	bps := make([]string, 0, len(st.Layouts))
	for bp := range st.Layouts {
		bps = append(bps, bp)
	}
	sort.Strings(bps)
	for _, bp := range bps {
		fmt.Printf("  [%s]\n", bp)
		for _, it := range st.Layouts[bp] {
			fmt.Printf("    %-28s x=%d y=%d w=%d h=%d\n", it.InstanceID, it.X, it.Y, it.W, it.H)
		}
	}
}

func printStatic(s *canvas.Static) {
	st := s.State()
	fmt.Printf("Static canvas for tab %s: %d slots", st.TabID, len(st.Slots))
	if s.HasUnsavedChanges() {
		fmt.Print(" (unsaved changes)")
	}
	fmt.Println()
	for _, slot := range st.Slots {
		r := slot.Slot
		if r == nil {
			continue
		}
		comp := slot.ComponentID
		if comp == "" {
			comp = "-"
		}
		lock := ""
		if r.Locked {
			lock = " locked"
		}
		fmt.Printf("  %-20s %-20s x=%.0f%% y=%.0f%% w=%.0f%% h=%.0f%%%s\n",
			slot.ID, comp, r.X, r.Y, r.Width, r.Height, lock)
	}
}
