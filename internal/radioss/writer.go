// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package radioss

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/deckconv/pkg/model"
	"github.com/pdiddy/deckconv/pkg/types"
)

// EngineExt is the extension of the first Engine deck of a run.
const EngineExt = ".D00"

// elementOrder is the order element sections are written in.
var elementOrder = []model.ElementKind{model.ElementShell, model.ElementSh3n, model.ElementSolid}

// Writer serializes documents into Radioss Starter and Engine decks. It
// reads documents without modifying them.
type Writer struct {
	cfg    types.WriterConfig
	logger *slog.Logger
}

// NewWriter returns a Writer. A nil logger discards log output.
func NewWriter(cfg types.WriterConfig, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Writer{cfg: cfg, logger: logger}
}

// EnginePath derives the Engine deck path from a Starter path:
// "model.rad" becomes "model.D00".
func EnginePath(starterPath string) string {
	return strings.TrimSuffix(starterPath, filepath.Ext(starterPath)) + EngineExt
}

// RunName returns the configured run name or the Starter file's base name.
func (w *Writer) RunName(starterPath string) string {
	if w.cfg.RunName != "" {
		return token(w.cfg.RunName)
	}
	return token(strings.TrimSuffix(filepath.Base(starterPath), filepath.Ext(starterPath)))
}

// Export writes the Starter deck to starterPath and the Engine deck next
// to it. The two files are attempted independently; a failure of one
// leaves the other intact and both errors are returned joined.
func (w *Writer) Export(starterPath string, doc *model.Document) error {
	return errors.Join(
		w.ExportStarter(starterPath, doc),
		w.ExportEngine(EnginePath(starterPath), doc.Analysis, w.RunName(starterPath)),
	)
}

// ExportStarter writes doc as a Starter deck. A document without a mesh
// yields a *model.StructuralError and no file is created.
func (w *Writer) ExportStarter(path string, doc *model.Document) error {
	if !doc.HasMesh() {
		return w.structural(path, "export starter", model.ErrNoMesh)
	}
	return w.writeFile(path, func(out io.Writer) error {
		return w.WriteStarter(out, doc)
	})
}

// ExportEngine writes run control as an Engine deck. Nil props yields a
// *model.StructuralError and no file is created.
func (w *Writer) ExportEngine(path string, props *model.AnalysisProperties, runName string) error {
	if props == nil {
		return w.structural(path, "export engine", model.ErrNoAnalysis)
	}
	return w.writeFile(path, func(out io.Writer) error {
		return WriteEngine(out, *props, runName)
	})
}

func (w *Writer) structural(path, op string, cause error) error {
	err := &model.StructuralError{Path: path, Op: op, Err: cause}
	w.logger.Error("skipping deck", "path", path, "op", op, "error", cause)
	return err
}

// writeFile runs fn against path, or against a temporary sibling that is
// renamed into place when atomic writes are enabled.
func (w *Writer) writeFile(path string, fn func(io.Writer) error) error {
	target := path
	if w.cfg.Atomic {
		target = path + ".tmp"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		if w.cfg.Atomic {
			os.Remove(target)
		}
		return fmt.Errorf("writing %s: %w", target, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", target, err)
	}
	if w.cfg.Atomic {
		if err := os.Rename(target, path); err != nil {
			os.Remove(target)
			return fmt.Errorf("renaming %s: %w", target, err)
		}
	}
	w.logger.Debug("wrote deck", "path", path)
	return nil
}

// WriteStarter serializes doc as a Starter deck.
func (w *Writer) WriteStarter(out io.Writer, doc *model.Document) error {
	if !doc.HasMesh() {
		return &model.StructuralError{Path: doc.Source, Op: "write starter", Err: model.ErrNoMesh}
	}
	bw := bufio.NewWriter(out)

	fmt.Fprintln(bw, "#RADIOSS STARTER")
	fmt.Fprintln(bw, "# Generated by deckconv")

	fmt.Fprintln(bw, "/NODE")
	for _, n := range doc.Nodes {
		fmt.Fprintf(bw, "%s %s %s %s\n", Int(n.ID), Float(n.X), Float(n.Y), Float(n.Z))
	}

	writeElements(bw, doc.Elements)
	writeProperties(bw, doc.Properties)
	writeRigidBodies(bw, doc.RigidBodies)
	writeContacts(bw, doc.Contacts)
	writeSets(bw, doc.Sets)
	writeMaterials(bw, doc.Materials)
	w.writeConstraints(bw, doc.Constraints)
	w.writeLoads(bw, doc.Loads)

	fmt.Fprintln(bw, "/END")
	return bw.Flush()
}

func writeElements(w io.Writer, elements []model.Element) {
	for _, kind := range elementOrder {
		header := false
		for _, e := range elements {
			if e.Kind != kind {
				continue
			}
			if !header {
				fmt.Fprintf(w, "/ELEMENT/%s\n", kind)
				header = true
			}
			fields := []string{Int(e.ID), Int(e.PropertyID)}
			for _, n := range e.Nodes {
				fields = append(fields, Int(n))
			}
			fmt.Fprintln(w, strings.Join(fields, " "))
		}
	}
}

func writeProperties(w io.Writer, props []model.Property) {
	for _, p := range props {
		switch p.Kind {
		case model.PropertyShell:
			fmt.Fprintf(w, "/PROP/SHELL/%d\n%s %s\n", p.ID, Int(p.MaterialID), Float(p.Thickness))
		case model.PropertySolid:
			fmt.Fprintf(w, "/PROP/SOLID/%d\n%s\n", p.ID, Int(p.MaterialID))
		case model.PropertyPart:
			fmt.Fprintf(w, "/PART/%d\n%s\n", p.ID, Int(p.MaterialID))
		}
	}
}

func writeRigidBodies(w io.Writer, bodies []model.RigidBody) {
	if len(bodies) == 0 {
		return
	}
	fmt.Fprintln(w, "/RBODY/LAGMUL")
	for _, rb := range bodies {
		fields := []string{
			token(rb.Name), setLabel(rb.NodeSet), Float(rb.Mass),
			Float(rb.CenterOfMass.X), Float(rb.CenterOfMass.Y), Float(rb.CenterOfMass.Z),
			Float(rb.Inertia.X), Float(rb.Inertia.Y), Float(rb.Inertia.Z),
		}
		for _, d := range rb.Locked.DOFs() {
			fields = append(fields, fmt.Sprint(int(d)))
		}
		fmt.Fprintln(w, strings.Join(fields, " "))
	}
}

func writeContacts(w io.Writer, contacts []model.Contact) {
	for i, c := range contacts {
		fmt.Fprintf(w, "/INTER/%s/%d\n", c.Type, i+1)
		fields := []string{token(c.Name), setLabel(c.SlaveSet), setLabel(c.MasterSet)}
		fields = append(fields, optionalFloats(c.Gap, c.Friction, c.Stiffness, c.Damping)...)
		fmt.Fprintln(w, strings.Join(fields, " "))
	}
}

func writeSets(w io.Writer, sets []model.SetDef) {
	for _, s := range sets {
		fmt.Fprintf(w, "/SET/%s\n%s\n", s.Kind, setLabel(s.Name))
		writeIDs(w, s.Members)
	}
}

func writeMaterials(w io.Writer, materials []model.Material) {
	for _, m := range materials {
		fmt.Fprintf(w, "/MAT/%s/%d\n", token(m.Law), m.ID)
		fields := []string{token(m.Name), token(m.Law), Float(m.Young), Float(m.Poisson), Float(m.Density)}
		fields = append(fields, optionalFloats(m.Yield, m.Hardening)...)
		fmt.Fprintln(w, strings.Join(fields, " "))
	}
}

func (w *Writer) writeConstraints(out io.Writer, constraints []model.Constraint) {
	for _, c := range constraints {
		if !c.Fixed {
			w.logger.Warn("skipping constraint without full fixity", "constraint", c.ID)
			continue
		}
		fmt.Fprintf(out, "/BOUND/FIXED\n%s\n", Int(c.ID))
		writeIDs(out, c.Nodes)
	}
}

func (w *Writer) writeLoads(out io.Writer, loads []model.Load) {
	for _, l := range loads {
		fmt.Fprintln(out, "/LOAD/FORCE")
		if l.Magnitude != nil && l.Direction != nil {
			fmt.Fprintf(out, "%s %s %s %s %s\n", Int(l.ID), Float(*l.Magnitude),
				Float(l.Direction.X), Float(l.Direction.Y), Float(l.Direction.Z))
		} else {
			if l.Magnitude != nil || l.Direction != nil {
				w.logger.Warn("load has magnitude or direction but not both; writing id only", "load", l.ID)
			}
			fmt.Fprintln(out, Int(l.ID))
		}
		writeIDs(out, l.Nodes)
	}
}

// WriteEngine serializes run control as an Engine deck.
func WriteEngine(out io.Writer, props model.AnalysisProperties, runName string) error {
	bw := bufio.NewWriter(out)

	fmt.Fprintln(bw, "#RADIOSS ENGINE")
	fmt.Fprintln(bw, "# Generated by deckconv")

	fmt.Fprintf(bw, "/RUN/%s/1\n%s\n", token(runName), Float(props.TerminationTime))
	fmt.Fprintf(bw, "/DT\n%s %s\n", Float(props.TimeStep), Float(props.TimeStepScale))
	fmt.Fprintf(bw, "/PRINT/-1\n%s\n", Float(props.PrintInterval))
	fmt.Fprintf(bw, "/ANIM/DT\n%s %s\n", Float(0), Float(props.AnimInterval()))
	if props.StressOutput {
		fmt.Fprintln(bw, "/ANIM/TENS/STRESS")
	}
	if props.StrainOutput {
		fmt.Fprintln(bw, "/ANIM/TENS/STRAIN")
	}
	if props.DisplacementOutput {
		fmt.Fprintln(bw, "/ANIM/VECT/DISP")
	}
	if props.Damping > 0 {
		fmt.Fprintf(bw, "/DAMPING/GLOBAL\n%s\n", Float(props.Damping))
	}
	if props.TimeIntegration == model.CentralDifference {
		fmt.Fprintln(bw, "/DEF_CENT/ON")
	}

	fmt.Fprintln(bw, "/END")
	return bw.Flush()
}
