package export

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pmaojo/hexalens/internal/hexalens/audit"
	"github.com/pmaojo/hexalens/internal/hexalens/domain"
	"github.com/pmaojo/hexalens/internal/hexalens/graph"
)

// ExcalidrawBinding represents the connection of an arrow to an element.
type ExcalidrawBinding struct {
	ElementID string  `json:"elementId"`
	Focus     float64 `json:"focus"`
	Gap       float64 `json:"gap"`
}

// ExcalidrawElement represents a single element in the Excalidraw scene.
type ExcalidrawElement struct {
	Type            string             `json:"type"`
	Version         int                `json:"version"`
	VersionNonce    int                `json:"versionNonce"`
	IsDeleted       bool               `json:"isDeleted"`
	ID              string             `json:"id"`
	FillStyle       string             `json:"fillStyle"`
	StrokeWidth     int                `json:"strokeWidth"`
	StrokeStyle     string             `json:"strokeStyle"`
	Roughness       int                `json:"roughness"`
	Opacity         int                `json:"opacity"`
	Angle           int                `json:"angle"`
	X               float64            `json:"x"`
	Y               float64            `json:"y"`
	StrokeColor     string             `json:"strokeColor"`
	BackgroundColor string             `json:"backgroundColor"`
	Width           float64            `json:"width"`
	Height          float64            `json:"height"`
	Seed            int                `json:"seed"`
	GroupIds        []string           `json:"groupIds"`
	Roundness       any                `json:"roundness"`
	BoundElements   []any              `json:"boundElements"`
	Updated         int64              `json:"updated"`
	Link            any                `json:"link"`
	Locked          bool               `json:"locked"`
	Text            string             `json:"text,omitempty"`
	FontSize        int                `json:"fontSize,omitempty"`
	FontFamily      int                `json:"fontFamily,omitempty"`
	TextAlign       string             `json:"textAlign,omitempty"`
	VerticalAlign   string             `json:"verticalAlign,omitempty"`
	StartBinding    *ExcalidrawBinding `json:"startBinding,omitempty"`
	EndBinding      *ExcalidrawBinding `json:"endBinding,omitempty"`
	Points          [][]float64        `json:"points,omitempty"`
	StartArrowhead  string             `json:"startArrowhead,omitempty"`
	EndArrowhead    string             `json:"endArrowhead,omitempty"`
}

// ExcalidrawScene represents the full file format.
type ExcalidrawScene struct {
	Type     string              `json:"type"`
	Version  int                 `json:"version"`
	Source   string              `json:"source"`
	Elements []ExcalidrawElement `json:"elements"`
	AppState map[string]any      `json:"appState"`
	Files    map[string]any      `json:"files"`
}

// ExportExcalidraw renders the classified architecture as an Excalidraw
// scene: one row of boxes per layer, colored by layer, with dependency
// arrows between boxes.
func ExportExcalidraw(g *graph.Graph, q *audit.Query, outputPath string) error {
	elements := []ExcalidrawElement{}

	// Layout constants
	const (
		nodeWidth  = 200.0
		nodeHeight = 100.0
		paddingX   = 50.0
		layerGap   = 300.0
	)

	layers := map[string][]*domain.TypeNode{}
	for _, t := range g.Types() {
		layer := q.LayerOf(t.ID)
		layers[layer] = append(layers[layer], t)
	}

	layerOrder := []string{
		audit.LayerPresentation,
		audit.LayerApplication,
		audit.LayerDomain,
		audit.LayerInfrastructure,
		audit.LayerUnknown,
	}

	nodeMap := make(map[domain.TypeID]ExcalidrawElement)
	currentY := 0.0

	for _, layerName := range layerOrder {
		// g.Types() is already ordered, so each row is deterministic
		layerNodes := layers[layerName]
		if len(layerNodes) == 0 {
			continue
		}

		bgColor := "#ffffff"
		strokeColor := "#000000"
		switch layerName {
		case audit.LayerDomain:
			bgColor = "#e6f7ff" // Light Blue
			strokeColor = "#1890ff"
		case audit.LayerApplication:
			bgColor = "#f6ffed" // Light Green
			strokeColor = "#52c41a"
		case audit.LayerInfrastructure:
			bgColor = "#fff7e6" // Light Orange
			strokeColor = "#fa8c16"
		case audit.LayerPresentation:
			bgColor = "#fff0f6" // Light Pink
			strokeColor = "#eb2f96"
		}

		currentX := 0.0
		for _, t := range layerNodes {
			rect := ExcalidrawElement{
				Type:            "rectangle",
				Version:         1,
				ID:              string(t.ID),
				FillStyle:       "solid",
				StrokeWidth:     1,
				StrokeStyle:     "solid",
				Roughness:       1,
				Opacity:         100,
				X:               currentX,
				Y:               currentY,
				StrokeColor:     strokeColor,
				BackgroundColor: bgColor,
				Width:           nodeWidth,
				Height:          nodeHeight,
				Seed:            1,
				GroupIds:        []string{},
				Roundness:       map[string]int{"type": 3},
			}
			elements = append(elements, rect)
			nodeMap[t.ID] = rect

			text := ExcalidrawElement{
				Type:            "text",
				Version:         1,
				ID:              string(t.ID) + "-text",
				FillStyle:       "solid",
				StrokeWidth:     1,
				StrokeStyle:     "solid",
				Roughness:       1,
				Opacity:         100,
				X:               currentX + 10,
				Y:               currentY + 10,
				StrokeColor:     "#000000",
				BackgroundColor: "transparent",
				Width:           nodeWidth - 20,
				Height:          nodeHeight - 20,
				Seed:            1,
				GroupIds:        []string{},
				Text:            nodeLabel(t, q),
				FontSize:        16,
				FontFamily:      1,
				TextAlign:       "left",
				VerticalAlign:   "top",
			}
			elements = append(elements, text)

			currentX += nodeWidth + paddingX
		}
		currentY += nodeHeight + layerGap
	}

	for _, t := range g.Types() {
		sourceRect, ok := nodeMap[t.ID]
		if !ok {
			continue
		}
		for _, dep := range g.DependenciesOf(t.ID) {
			targetRect, ok := nodeMap[dep]
			if !ok {
				continue
			}

			startX := sourceRect.X + nodeWidth/2
			startY := sourceRect.Y + nodeHeight
			endX := targetRect.X + nodeWidth/2
			endY := targetRect.Y

			arrow := ExcalidrawElement{
				Type:            "arrow",
				Version:         1,
				ID:              fmt.Sprintf("%s-%s", t.ID, dep),
				FillStyle:       "solid",
				StrokeWidth:     1,
				StrokeStyle:     "solid",
				Roughness:       1,
				Opacity:         100,
				X:               startX,
				Y:               startY,
				StrokeColor:     "#000000",
				BackgroundColor: "transparent",
				Width:           endX - startX,
				Height:          endY - startY,
				Seed:            1,
				GroupIds:        []string{},
				Points:          [][]float64{{0, 0}, {endX - startX, endY - startY}},
				StartBinding: &ExcalidrawBinding{
					ElementID: sourceRect.ID,
					Focus:     0.1,
					Gap:       1,
				},
				EndBinding: &ExcalidrawBinding{
					ElementID: targetRect.ID,
					Focus:     0.1,
					Gap:       1,
				},
				EndArrowhead: "arrow",
			}
			elements = append(elements, arrow)
		}
	}

	scene := ExcalidrawScene{
		Type:     "excalidraw",
		Version:  2,
		Source:   "hexalens",
		Elements: elements,
		AppState: map[string]any{"viewBackgroundColor": "#ffffff"},
		Files:    map[string]any{},
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(scene)
}

func nodeLabel(t *domain.TypeNode, q *audit.Query) string {
	label := t.Simple
	if res, ok := q.Results().ByID[t.ID]; ok && res.Status == domain.StatusClassified {
		kind := res.Kind
		if res.Direction != "" {
			kind = fmt.Sprintf("%s %s", res.Direction, kind)
		}
		return fmt.Sprintf("%s\n(%s)", label, kind)
	}
	return label
}
