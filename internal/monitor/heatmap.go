package monitor

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/thermal.report/internal/config"
	"github.com/banshee-data/thermal.report/internal/httputil"
)

// handleHeatmap renders the latest frame of one sensor as an ECharts
// heatmap (HTML). This is a debugging-only endpoint to eyeball frames
// and crop regions without a frontend.
// Query params:
//   - addr (optional; defaults to the first configured sensor), as
//     decimal or "0x.." hex
func (ws *WebServer) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	addr := ws.cfg.Sensors[0].Addr
	if q := r.URL.Query().Get("addr"); q != "" {
		parsed, err := config.ParseAddress(q)
		if err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		addr = int(parsed)
	}

	sensor, ok := ws.cfg.SensorByAddr(addr)
	if !ok {
		httputil.NotFound(w, fmt.Sprintf("sensor 0x%02x not configured", addr))
		return
	}

	snap, ok := ws.sampler.Latest(addr)
	if !ok {
		httputil.NotFound(w, fmt.Sprintf("no frame captured yet for %s", sensor.Name()))
		return
	}

	frame := snap.Frame
	cols, rows := frame.Cols(), frame.Rows()

	data := make([]opts.HeatMapData, 0, cols*rows)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			// ECharts y axis grows upwards; flip so row 0 is on top.
			data = append(data, opts.HeatMapData{Value: [3]interface{}{col, rows - 1 - row, frame.At(row, col)}})
		}
	}

	xLabels := make([]string, cols)
	for c := range xLabels {
		xLabels[c] = strconv.Itoa(c)
	}
	yLabels := make([]string, rows)
	for r := range yLabels {
		yLabels[r] = strconv.Itoa(rows - 1 - r)
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Thermal Frame", Width: "900px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Sensor %s", sensor.Name()),
			Subtitle: fmt.Sprintf("min=%.1f avg=%.1f max=%.1f crop=%s", frame.Min(), frame.Avg(), frame.Max(), snap.Crop),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: xLabels}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: yLabels}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(frame.Min()),
			Max:        float32(frame.Max()),
			InRange:    &opts.VisualMapInRange{Color: []string{"#313695", "#74add1", "#e0f3f8", "#fee090", "#f46d43", "#a50026"}},
		}),
	)
	hm.AddSeries("temperature", data)

	var buf bytes.Buffer
	if err := hm.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
