package main

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"go.uber.org/zap"
	"golang.design/x/clipboard"
	"golang.org/x/image/colornames"

	"github.com/milk9111/hexskirmish/common"
	"github.com/milk9111/hexskirmish/config"
	"github.com/milk9111/hexskirmish/ecs/component"
	"github.com/milk9111/hexskirmish/hex"
	"github.com/milk9111/hexskirmish/prefabs"
	"github.com/milk9111/hexskirmish/scenario"
	"github.com/milk9111/hexskirmish/script"
)

const (
	panelX      = 920
	listLimit   = 14
	glideFactor = 0.25
)

type Game struct {
	frames int

	cfg    config.Config
	logger *zap.Logger
	play   *config.Game
	layout common.Layout
	ui     *ebitenui.UI

	watcher   *prefabs.Watcher
	clipboard bool

	selected string
	colors   map[string]color.Color
	// drawn holds each figure's on-screen position, which glides toward its
	// board cell after a move or undo.
	drawn  map[string]cp.Vector
	status string
}

func NewGame(cfg config.Config, logger *zap.Logger) (*Game, error) {
	g := &Game{
		cfg:    cfg,
		logger: logger,
		layout: common.DefaultLayout(),
	}
	if err := g.open(); err != nil {
		return nil, err
	}
	g.ui = NewHUD(g)
	return g, nil
}

// open (re)loads the configured scenario, keeping the current one on error.
func (g *Game) open() error {
	play, err := g.cfg.Open(g.logger)
	if err != nil {
		return err
	}
	g.play = play
	g.drawn = make(map[string]cp.Vector)
	g.colors = make(map[string]color.Color)
	for _, f := range play.Session.Spec().Figures {
		switch {
		case f.Color != nil:
			g.colors[f.Name] = f.Color.Color
		case f.Team == component.TeamMonster.String():
			g.colors[f.Name] = colornames.Indianred
		default:
			g.colors[f.Name] = colornames.Steelblue
		}
	}
	if names := play.Session.Figures(); len(names) > 0 {
		g.selected = names[0]
	}
	g.status = fmt.Sprintf("loaded %s", play.Session.Spec().Name)
	return nil
}

func (g *Game) Update() error {
	g.frames++
	g.reloadIfChanged()
	g.ui.Update()

	shift := ebiten.IsKeyPressed(ebiten.KeyShift)
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter) && shift:
		g.runAll()
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		g.step()
	case inpututil.IsKeyJustPressed(ebiten.KeyBackspace):
		g.undo()
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.advance()
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		g.runScript()
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		g.copyHistory()
	case inpututil.IsKeyJustPressed(ebiten.KeyTab):
		g.cycleSelection()
	case inpututil.IsKeyJustPressed(ebiten.Key1):
		g.provide(component.ColumnMinus)
	case inpututil.IsKeyJustPressed(ebiten.Key2):
		g.provide(component.ColumnNeutral)
	case inpututil.IsKeyJustPressed(ebiten.Key3):
		g.provide(component.ColumnPlus)
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		if float64(x) < panelX {
			g.click(g.layout.FromPixel(cp.Vector{X: float64(x), Y: float64(y)}))
		}
	}

	g.glide()
	return nil
}

func (g *Game) reloadIfChanged() {
	if g.watcher == nil {
		return
	}
	select {
	case change, ok := <-g.watcher.Events:
		if !ok {
			g.watcher = nil
			return
		}
		reload := g.open
		if change.Script {
			// Script edits keep the board as it is.
			reload = g.reloadScript
		}
		if err := reload(); err != nil {
			g.logger.Warn("reload failed", zap.String("file", change.Path), zap.Bool("script", change.Script), zap.Error(err))
			g.status = "reload failed: " + err.Error()
			return
		}
		g.logger.Info("reloaded", zap.String("file", change.Path), zap.Bool("script", change.Script))
	case err := <-g.watcher.Errors:
		if err != nil {
			g.logger.Warn("watch error", zap.Error(err))
		}
	default:
	}
}

func (g *Game) reloadScript() error {
	name := g.cfg.Script
	if name == "" {
		name = g.play.Session.Spec().Script
	}
	if name == "" {
		return nil
	}
	p, err := script.Load(name, script.WithLogger(g.logger))
	if err != nil {
		return err
	}
	g.play.Producer = p
	g.status = "reloaded " + name
	return nil
}

func (g *Game) step() {
	ran, err := g.play.Session.Step()
	if err != nil {
		g.status = err.Error()
		return
	}
	if ran {
		g.status = "stepped"
		return
	}
	g.status = g.idleStatus()
}

func (g *Game) runAll() {
	n, err := g.play.Session.Run()
	if err != nil {
		g.status = fmt.Sprintf("ran %d commands, then %s", n, err)
		return
	}
	g.status = fmt.Sprintf("ran %d commands", n)
	if g.play.Prompt != nil && g.play.Prompt.Waiting() && len(g.play.Session.Pending()) > 0 {
		g.status += ", waiting for a drawn column (1/2/3)"
	}
}

func (g *Game) idleStatus() string {
	if len(g.play.Session.Pending()) > 0 {
		return "waiting for a drawn column (1/2/3)"
	}
	return "queue empty"
}

func (g *Game) undo() {
	if g.play.Session.Undo() {
		g.status = "undone"
		return
	}
	g.status = "nothing to undo"
}

func (g *Game) advance() {
	if err := g.play.Session.Advance(context.Background()); err != nil {
		g.status = err.Error()
		return
	}
	g.status = "phase " + g.play.Session.Phase()
}

func (g *Game) runScript() {
	if g.play.Producer == nil {
		g.status = "no script loaded"
		return
	}
	cmds, err := g.play.Producer.Produce(context.Background(), g.play.Session)
	if err != nil {
		g.logger.Warn("script failed", zap.String("script", g.play.Producer.Name()), zap.Error(err))
		g.status = "script: " + err.Error()
		return
	}
	g.play.Session.Enqueue(cmds...)
	g.status = fmt.Sprintf("script queued %d commands", len(cmds))
}

func (g *Game) provide(col component.TrayColumn) {
	if g.play.Prompt == nil {
		return
	}
	g.play.Prompt.Provide(col)
	g.status = "drew " + col.String()
}

func (g *Game) copyHistory() {
	if !g.clipboard {
		g.status = "clipboard unavailable"
		return
	}
	var b strings.Builder
	for _, c := range g.play.Session.Snapshot().History {
		b.WriteString(c.Text)
		b.WriteByte('\n')
	}
	clipboard.Write(clipboard.FmtText, []byte(b.String()))
	g.status = "history copied"
}

func (g *Game) cycleSelection() {
	names := g.play.Session.Figures()
	for i, n := range names {
		if n == g.selected {
			g.selected = names[(i+1)%len(names)]
			return
		}
	}
}

// click selects an own-team figure or asks the selected figure to act on c.
func (g *Game) click(c hex.Coord) {
	in, ok := g.play.Session.IntentAt(g.selected, c)
	if !ok {
		for _, v := range g.play.Session.Snapshot().Figures {
			if v.Q == c.Q && v.R == c.R {
				g.selected = v.Name
				return
			}
		}
		return
	}
	if err := g.play.Session.EnqueueIntents(in); err != nil {
		g.status = err.Error()
		return
	}
	g.status = fmt.Sprintf("queued %s for %s", in.Kind, in.Figure)
}

func (g *Game) glide() {
	for _, v := range g.play.Session.Snapshot().Figures {
		target := g.layout.ToPixel(hex.Coord{Q: v.Q, R: v.R})
		cur, ok := g.drawn[v.Name]
		if !ok {
			g.drawn[v.Name] = target
			continue
		}
		g.drawn[v.Name] = cp.Vector{
			X: float64(common.Approach(float32(cur.X), float32(target.X), glideFactor, 0.5)),
			Y: float64(common.Approach(float32(cur.Y), float32(target.Y), glideFactor, 0.5)),
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Black)
	snap := g.play.Session.Snapshot()

	for _, c := range hex.Spiral(hex.Coord{}, g.play.Session.Spec().Board.Radius) {
		drawHex(screen, g.layout.Corners(c), 1, colornames.Dimgray)
	}

	for _, v := range snap.Figures {
		pos, ok := g.drawn[v.Name]
		if !ok {
			pos = g.layout.ToPixel(hex.Coord{Q: v.Q, R: v.R})
		}
		clr := g.colors[v.Name]
		if v.Health <= 0 {
			clr = colornames.Gray
		}
		r := float32(g.layout.Size * 0.55)
		vector.FillCircle(screen, float32(pos.X), float32(pos.Y), r, clr, true)
		if v.Name == g.selected {
			vector.StrokeCircle(screen, float32(pos.X), float32(pos.Y), r+4, 2, colornames.Gold, true)
		}
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s %d/%d", v.Name, v.Health, v.MaxHealth), int(pos.X)-24, int(pos.Y)+int(r)+2)
	}

	g.drawPanel(screen, snap)
}

func (g *Game) drawPanel(screen *ebiten.Image, snap scenario.Snapshot) {
	vector.FillRect(screen, panelX, 0, common.BaseWidth-panelX, common.BaseHeight, color.RGBA{R: 20, G: 20, B: 28, A: 255}, false)

	var b strings.Builder
	fmt.Fprintf(&b, "%s  round %d  %s\nFPS %.1f\n\n", snap.Scenario, snap.Round, snap.Phase, ebiten.ActualFPS())
	if v, ok := g.play.Session.FigureView(g.selected); ok {
		fmt.Fprintf(&b, "%s (%s) hp %d/%d atk %d rng %d\n", v.Name, v.Team, v.Health, v.MaxHealth, v.Attack, v.Range)
		if len(v.Conditions) > 0 {
			fmt.Fprintf(&b, "  %s\n", strings.Join(v.Conditions, ", "))
		}
		if v.Targeting != "" {
			fmt.Fprintf(&b, "  attacking %s %v\n", v.Targeting, v.Modifiers)
		}
	}
	writeList(&b, "pending", snap.Pending)
	writeList(&b, "history", snap.History)
	fmt.Fprintf(&b, "\n%s", g.status)
	ebitenutil.DebugPrintAt(screen, b.String(), int(panelX)+10, 10)
}

func writeList(b *strings.Builder, title string, cmds []scenario.CommandView) {
	fmt.Fprintf(b, "\n%s (%d)\n", title, len(cmds))
	for i, c := range cmds {
		if i == listLimit {
			b.WriteString("  ...\n")
			break
		}
		fmt.Fprintf(b, "  %s\n", c.Text)
	}
}

func drawHex(screen *ebiten.Image, corners [6]cp.Vector, width float32, clr color.Color) {
	for i, p := range corners {
		q := corners[(i+1)%len(corners)]
		vector.StrokeLine(screen, float32(p.X), float32(p.Y), float32(q.X), float32(q.Y), width, clr, true)
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return common.BaseWidth, common.BaseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
