package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/gdamore/tcell/v2"

	"github.com/piwi3910/Aquarium/internal/engine"
	"github.com/piwi3910/Aquarium/internal/export"
	"github.com/piwi3910/Aquarium/internal/importer"
	"github.com/piwi3910/Aquarium/internal/model"
	"github.com/piwi3910/Aquarium/internal/project"
	"github.com/piwi3910/Aquarium/internal/session"
	"github.com/piwi3910/Aquarium/internal/tui"
)

// ─── Placement ───────────────────────────────────────────

func runPlace(a *app, args []string) error {
	fs := newFlagSet("place", a.out)
	x := fs.Float64("x", 0, "world x of the drop point")
	y := fs.Float64("y", 0, "world y of the drop point")
	sprite := fs.String("sprite", "", "sprite reference")
	item := fs.String("item", "", "catalog item name; fills sprite, footprint and layer")
	footprint := fs.Int("footprint", 0, "footprint side in tiles; 0 uses the default")
	layer := fs.Int("layer", -1, "render layer; -1 uses the preferred default")
	id := fs.String("id", "", "object id; generated when empty")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	req := engine.PlaceRequest{
		WorldX:    *x,
		WorldY:    *y,
		SpriteRef: *sprite,
		Footprint: *footprint,
		Layer:     *layer,
		ID:        *id,
	}
	if *item != "" {
		cat, err := a.catalog()
		if err != nil {
			return err
		}
		it := cat.FindByName(*item)
		if it == nil {
			return fmt.Errorf("place: unknown catalog item %q", *item)
		}
		req = requestFromItem(*it, req)
	}
	if req.Layer < 0 {
		req.Layer = a.prefs.Config().DefaultLayer
	}

	sess, err := a.session()
	if err != nil {
		return err
	}
	obj, err := sess.Drop(req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "placed %s at (%d, %d) size %d\n", obj.ID, obj.OriginCol, obj.OriginRow, obj.Footprint)
	return nil
}

// requestFromItem fills the request fields left unset from a catalog item.
func requestFromItem(it model.DecorItem, req engine.PlaceRequest) engine.PlaceRequest {
	if req.SpriteRef == "" {
		req.SpriteRef = it.SpriteRef
	}
	if req.Footprint == 0 {
		req.Footprint = it.Footprint
	}
	if req.Layer < 0 {
		req.Layer = it.Layer
	}
	return req
}

func runMove(a *app, args []string) error {
	fs := newFlagSet("move", a.out)
	steps := fs.Int("steps", 1, "number of tiles to move")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("move: %w: want <id> <up|down|left|right>", ErrUsage)
	}
	id := fs.Arg(0)
	dir, ok := model.ParseDirection(fs.Arg(1))
	if !ok {
		return fmt.Errorf("move: %w: unknown direction %q", ErrUsage, fs.Arg(1))
	}

	sess, err := a.session()
	if err != nil {
		return err
	}
	var obj model.PlacedObject
	for i := 0; i < *steps; i++ {
		obj, err = sess.Nudge(id, dir)
		if err != nil {
			if i > 0 {
				fmt.Fprintf(a.out, "moved %s %d of %d steps\n", id, i, *steps)
			}
			return err
		}
	}
	fmt.Fprintf(a.out, "moved %s to (%d, %d)\n", id, obj.OriginCol, obj.OriginRow)
	return nil
}

func runRemove(a *app, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("remove: %w: want one or more ids", ErrUsage)
	}
	sess, err := a.session()
	if err != nil {
		return err
	}
	for _, id := range args {
		removed, err := sess.Delete(id)
		if err != nil {
			return err
		}
		if removed {
			fmt.Fprintf(a.out, "removed %s\n", id)
		} else {
			fmt.Fprintf(a.out, "not found %s\n", id)
		}
	}
	return nil
}

func runArrange(a *app, args []string) error {
	fs := newFlagSet("arrange", a.out)
	x := fs.Float64("x", 0, "world x the arrangement grows from")
	y := fs.Float64("y", 0, "world y the arrangement grows from")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("arrange: %w: want Name=qty ...", ErrUsage)
	}

	cat, err := a.catalog()
	if err != nil {
		return err
	}
	items := make([]engine.ArrangeItem, 0, fs.NArg())
	for _, arg := range fs.Args() {
		name, qtyText, found := strings.Cut(arg, "=")
		qty := 1
		if found {
			qty, err = strconv.Atoi(qtyText)
			if err != nil || qty <= 0 {
				return fmt.Errorf("arrange: %w: bad quantity in %q", ErrUsage, arg)
			}
		}
		it := cat.FindByName(name)
		if it == nil {
			return fmt.Errorf("arrange: unknown catalog item %q", name)
		}
		req := requestFromItem(*it, engine.PlaceRequest{WorldX: *x, WorldY: *y, Layer: -1})
		items = append(items, engine.ArrangeItem{Request: req, Quantity: qty})
	}

	sess, err := a.session()
	if err != nil {
		return err
	}
	result, err := sess.Arrange(items)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "placed %d objects\n", len(result.Placed))
	if len(result.Unplaced) > 0 {
		fmt.Fprintf(a.out, "no room for %d objects:\n", len(result.Unplaced))
		for _, req := range result.Unplaced {
			fmt.Fprintf(a.out, "  %s (size %d)\n", req.SpriteRef, req.Footprint)
		}
	}
	return nil
}

func runEdit(a *app, args []string) error {
	sess, err := a.session()
	if err != nil {
		return err
	}
	cat, err := a.catalog()
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("edit: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("edit: %w", err)
	}
	defer screen.Fini()

	// Log lines would draw over the screen
	prev := log.Writer()
	log.SetOutput(io.Discard)
	defer log.SetOutput(prev)

	tui.New(screen, sess, cat).Run()
	return nil
}

// ─── Inspection ──────────────────────────────────────────

func runList(a *app, args []string) error {
	fs := newFlagSet("list", a.out)
	asJSON := fs.Bool("json", false, "print records as JSON")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	sess, err := a.session()
	if err != nil {
		return err
	}
	objects := sess.Objects()

	if *asJSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(objects)
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSPRITE\tCOL\tROW\tSIZE\tLAYER")
	for _, o := range objects {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\n", o.ID, o.SpriteRef, o.OriginCol, o.OriginRow, o.Footprint, o.Layer)
	}
	return tw.Flush()
}

func runStats(a *app, args []string) error {
	sess, err := a.session()
	if err != nil {
		return err
	}
	st := sess.Stats()
	settings := sess.Settings()
	fmt.Fprintf(a.out, "owner:     %s\n", sess.Owner())
	fmt.Fprintf(a.out, "tank:      %d x %d tiles of %.4g\n", settings.TilesHorizontal, settings.TilesVertical, settings.TileSize)
	fmt.Fprintf(a.out, "objects:   %d\n", st.Objects)
	fmt.Fprintf(a.out, "occupied:  %d / %d tiles (%.1f%%)\n", st.OccupiedTiles, st.TotalTiles, st.Occupancy())
	if conflicts := sess.Conflicts(); len(conflicts) > 0 {
		fmt.Fprintf(a.out, "conflicts: %d\n", len(conflicts))
		for _, c := range conflicts {
			fmt.Fprintf(a.out, "  %s\n", c)
		}
	}
	return nil
}

// ─── Import / Export ─────────────────────────────────────

// formatFromPath guesses a file format from its extension.
func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "pdf"
	case ".xlsx", ".xlsm":
		return "excel"
	case ".dxf":
		return "dxf"
	case ".json":
		return "json"
	case ".csv", ".txt", ".tsv":
		return "csv"
	}
	return ""
}

func runExport(a *app, args []string) error {
	fs := newFlagSet("export", a.out)
	format := fs.String("format", "", "pdf, labels, excel, dxf or json; guessed from -o when empty")
	out := fs.String("o", "", "output file")
	name := fs.String("name", "Tank", "layout name shown in documents")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *out == "" {
		return fmt.Errorf("export: %w: -o is required", ErrUsage)
	}
	if *format == "" {
		*format = formatFromPath(*out)
	}

	sess, err := a.session()
	if err != nil {
		return err
	}
	layout := sess.Layout(*name)

	switch *format {
	case "pdf":
		err = export.ExportPDF(*out, layout)
	case "labels":
		err = export.ExportLabels(*out, layout)
	case "excel":
		err = export.ExportExcel(*out, layout)
	case "dxf":
		err = export.ExportDXF(*out, layout)
	case "json":
		err = project.SaveLayout(*out, layout)
	default:
		return fmt.Errorf("export: %w: unknown format %q", ErrUsage, *format)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "exported %d objects to %s\n", len(layout.Objects), *out)
	return nil
}

func runImport(a *app, args []string) error {
	fs := newFlagSet("import", a.out)
	format := fs.String("format", "", "csv, excel, dxf or json; guessed from the file name when empty")
	nearest := fs.Bool("nearest", false, "drop blocked or out-of-bounds records at the nearest free spot")
	keepIDs := fs.Bool("keep-ids", false, "keep record ids from the file instead of generating new ones")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("import: %w: want one input file", ErrUsage)
	}
	path := fs.Arg(0)
	if *format == "" {
		*format = formatFromPath(path)
	}

	sess, err := a.session()
	if err != nil {
		return err
	}

	var result importer.ImportResult
	switch *format {
	case "csv":
		result = importer.ImportCSV(path)
	case "excel":
		result = importer.ImportExcel(path)
	case "dxf":
		result = importer.ImportDXF(path, sess.Settings().TileSize)
	case "json":
		layout, err := project.LoadLayout(path)
		if err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}
		result.Objects = layout.Objects
	default:
		return fmt.Errorf("import: %w: unknown format %q", ErrUsage, *format)
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(a.out, "warning: %s\n", w)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(a.out, "error: %s\n", e)
	}
	if len(result.Objects) == 0 && len(result.Errors) > 0 {
		return fmt.Errorf("import %s: no usable records", path)
	}

	if !*keepIDs {
		// Ids are unique across owners in the store
		for i := range result.Objects {
			result.Objects[i].ID = ""
		}
	}
	inserted := insertAll(a.out, sess, result.Objects, *nearest)
	fmt.Fprintf(a.out, "imported %d of %d objects\n", inserted, len(result.Objects))
	return nil
}

// insertAll inserts records at their recorded origins and reports each
// failure. With nearest set, records that do not fit where recorded are
// dropped at the closest free block instead.
func insertAll(out io.Writer, sess *session.Session, records []model.PlacedObject, nearest bool) int {
	tile := sess.Settings().TileSize
	inserted := 0
	for _, rec := range records {
		_, err := sess.Insert(rec)
		if err != nil && nearest && (errors.Is(err, engine.ErrBlocked) || errors.Is(err, engine.ErrOutOfBounds)) {
			_, err = sess.Drop(engine.PlaceRequest{
				WorldX:    float64(rec.OriginCol) * tile,
				WorldY:    float64(rec.OriginRow) * tile,
				SpriteRef: rec.SpriteRef,
				Footprint: rec.Footprint,
				Layer:     rec.Layer,
				ID:        rec.ID,
			})
		}
		if err != nil {
			fmt.Fprintf(out, "skipped %s: %v\n", rec.SpriteRef, err)
			continue
		}
		inserted++
	}
	return inserted
}

// ─── Catalog and templates ───────────────────────────────

func runCatalog(a *app, args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}
	cat, err := a.catalog()
	if err != nil {
		return err
	}

	switch sub {
	case "list":
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tSPRITE\tSIZE\tLAYER")
		for _, it := range cat.Items {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", it.Name, it.SpriteRef, it.Footprint, it.Layer)
		}
		return tw.Flush()
	case "import":
		if len(args) != 1 {
			return fmt.Errorf("catalog import: %w: want one catalog file", ErrUsage)
		}
		before := len(cat.Items)
		merged, err := project.ImportCatalog(args[0], cat)
		if err != nil {
			return fmt.Errorf("catalog import: %w", err)
		}
		if err := project.SaveCatalog(a.catalogPath(), merged); err != nil {
			return fmt.Errorf("catalog import: %w", err)
		}
		fmt.Fprintf(a.out, "added %d catalog items\n", len(merged.Items)-before)
		return nil
	}
	return fmt.Errorf("catalog: %w: unknown subcommand %q", ErrUsage, sub)
}

func runTemplate(a *app, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("template: %w: want save, apply or list", ErrUsage)
	}
	sub, args := args[0], args[1:]

	path := a.templatesPath()
	templates, err := project.LoadTemplates(path)
	if err != nil {
		return err
	}

	switch sub {
	case "list":
		for _, t := range templates.Templates {
			fmt.Fprintf(a.out, "%s\t%d objects\t%s\n", t.Name, len(t.Objects), t.Description)
		}
		return nil

	case "save":
		fs := newFlagSet("template save", a.out)
		desc := fs.String("description", "", "template description")
		if err := parseFlags(fs, args); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return fmt.Errorf("template save: %w: want a template name", ErrUsage)
		}
		sess, err := a.session()
		if err != nil {
			return err
		}
		name := fs.Arg(0)
		t := model.NewLayoutTemplate(name, *desc, sess.Objects(), sess.Settings())
		if _, err := project.PutTemplate(path, t); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "saved template %s with %d objects\n", name, len(t.Objects))
		return nil

	case "apply":
		if len(args) != 1 {
			return fmt.Errorf("template apply: %w: want a template name", ErrUsage)
		}
		t := templates.FindByName(args[0])
		if t == nil {
			return fmt.Errorf("template apply: unknown template %q", args[0])
		}
		sess, err := a.session()
		if err != nil {
			return err
		}
		layout := t.ToLayout(t.Name, sess.Owner())
		inserted := insertAll(a.out, sess, layout.Objects, false)
		fmt.Fprintf(a.out, "applied %d of %d objects\n", inserted, len(layout.Objects))
		return nil
	}
	return fmt.Errorf("template: %w: unknown subcommand %q", ErrUsage, sub)
}

// ─── Backup ──────────────────────────────────────────────

func runBackup(a *app, args []string) error {
	fs := newFlagSet("backup", a.out)
	out := fs.String("o", "aquarium-backup.json", "output file")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	cat, err := a.catalog()
	if err != nil {
		return err
	}
	objects, err := a.store.LoadAllObjects("")
	if err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	if err := project.ExportAllData(*out, a.prefs.Config(), cat, objects); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "backed up %d objects to %s\n", len(objects), *out)
	return nil
}

// runRestore writes backup records straight to the store, keeping their
// owners. Overlaps are resolved when a tank is next opened.
func runRestore(a *app, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("restore: %w: want one backup file", ErrUsage)
	}
	backup, err := project.ImportAllData(args[0])
	if err != nil {
		return err
	}
	for _, rec := range backup.Objects {
		if _, err := a.store.SaveObject(rec); err != nil {
			return fmt.Errorf("restore %s: %w", rec.ID, err)
		}
	}
	if err := project.SaveCatalog(a.catalogPath(), backup.Catalog); err != nil {
		return fmt.Errorf("restore catalog: %w", err)
	}
	a.prefs.SetConfig(backup.Config)
	fmt.Fprintf(a.out, "restored %d objects and %d catalog items\n", len(backup.Objects), len(backup.Catalog.Items))
	return nil
}
