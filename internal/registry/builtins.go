/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package registry

import (
	"context"
	"fmt"
	"strings"

	"gridshell/internal/domain"
)

// builtinRenderers holds the native widgets shipped with the binary. The
// catalog deliberately lists more components than have a renderer here;
// entries without one resolve to placeholders until a loader is registered.
var builtinRenderers = map[string]RenderFunc{
	"live-rates": func(_ context.Context, size domain.GridSize) (string, error) {
		return renderCard("Live Rates", size,
			"EURUSD  1.0872  +0.21%",
			"USDJPY  147.12  -0.08%",
			"GBPUSD  1.2704  +0.05%"), nil
	},
	"watchlist": func(_ context.Context, size domain.GridSize) (string, error) {
		return renderCard("Watchlist", size,
			"AAPL   231.40  +1.2%",
			"MSFT   417.88  -0.3%",
			"VOW3    98.16  +0.7%"), nil
	},
	"candle-chart": func(_ context.Context, size domain.GridSize) (string, error) {
		return renderCard("Candlestick Chart", size,
			"interval 1h  overlays: none",
			"O 1.0859  H 1.0881  L 1.0844  C 1.0872"), nil
	},
	"news-feed": func(_ context.Context, size domain.GridSize) (string, error) {
		return renderCard("News Feed", size,
			"ECB holds rates, signals data-dependent path",
			"Oil slides on inventory build"), nil
	},
	"pnl-summary": func(_ context.Context, size domain.GridSize) (string, error) {
		return renderCard("P&L Summary", size,
			"realised   +12,430.18",
			"unrealised  -1,204.55"), nil
	},
	"fx-matrix": func(_ context.Context, size domain.GridSize) (string, error) {
		return renderCard("FX Matrix", size,
			"        EUR     USD     JPY",
			"EUR       -  1.0872  159.95",
			"USD  0.9198       -  147.12"), nil
	},
	"portfolio-grid": func(_ context.Context, size domain.GridSize) (string, error) {
		return renderCard("Portfolio Grid", size,
			"symbol   qty     mv        upl",
			"AAPL     120  27,768.00  +402.12",
			"BUND10Y   50  49,310.00  -118.40"), nil
	},
}

// RegisterBuiltins installs the native loaders shipped with the binary.
func RegisterBuiltins(r *Registry) {
	for id, render := range builtinRenderers {
		r.Register(id, NativeLoader(id, render))
	}
}

// renderCard lays out a widget title plus detail lines, dropping lines that
// would not fit the grid height.
func renderCard(title string, size domain.GridSize, lines ...string) string {
	rows := size.H
	if rows < 1 {
		rows = 1
	}
	if len(lines) > rows {
		lines = lines[:rows]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%dx%d]", title, size.W, size.H)
	for _, line := range lines {
		b.WriteString("\n")
		b.WriteString(line)
	}
	return b.String()
}
