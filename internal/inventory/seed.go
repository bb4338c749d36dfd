/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package inventory

import "gridshell/internal/domain"

// Builtins returns the built-in finance component catalog. The slice is
// rebuilt on every call so callers may mutate their copy.
func Builtins() []Meta {
	return []Meta{
		{
			ID: "live-rates", Name: "live-rates", DisplayName: "Live Rates",
			Description: "Streaming spot rates with bid/ask and day change",
			Category:    "market-data", Subcategory: "rates", Complexity: "moderate",
			Quality:     QualityPort3000,
			Tags:        []string{"fx", "streaming", "rates", "quotes"},
			DefaultSize: domain.GridSize{W: 4, H: 3},
			MinSize:     domain.GridSize{W: 2, H: 2},
		},
		{
			ID: "candle-chart", Name: "candle-chart", DisplayName: "Candlestick Chart",
			Description: "OHLC candlestick chart with interval selection and overlays",
			Category:    "charting", Subcategory: "price", Complexity: "complex",
			Quality:     QualityPort3000,
			Tags:        []string{"chart", "ohlc", "candles", "technical"},
			DefaultSize: domain.GridSize{W: 6, H: 4},
			MinSize:     domain.GridSize{W: 4, H: 3},
		},
		{
			ID: "depth-chart", Name: "depth-chart", DisplayName: "Depth Chart",
			Description: "Order book depth visualisation chart",
			Category:    "charting", Subcategory: "liquidity", Complexity: "moderate",
			Quality:     QualityPort3200,
			Tags:        []string{"chart", "orderbook", "depth"},
			DefaultSize: domain.GridSize{W: 4, H: 3},
		},
		{
			ID: "portfolio-grid", Name: "portfolio-grid", DisplayName: "Portfolio Grid",
			Description: "Positions grid with market value, cost basis and unrealised P&L",
			Category:    "portfolio", Subcategory: "positions", Complexity: "complex",
			Quality:     QualityEnhanced,
			Tags:        []string{"positions", "holdings", "grid", "pnl"},
			DefaultSize: domain.GridSize{W: 6, H: 4},
			MinSize:     domain.GridSize{W: 3, H: 2},
		},
		{
			ID: "order-blotter", Name: "order-blotter", DisplayName: "Order Blotter",
			Description: "Working and filled orders blotter with amend and cancel actions",
			Category:    "trading", Subcategory: "orders", Complexity: "complex",
			Quality:     QualityPort3000,
			Tags:        []string{"orders", "blotter", "execution"},
			DefaultSize: domain.GridSize{W: 6, H: 3},
		},
		{
			ID: "trade-ticket", Name: "trade-ticket", DisplayName: "Trade Ticket",
			Description: "Single order entry ticket with limit and market types",
			Category:    "trading", Subcategory: "entry", Complexity: "moderate",
			Quality:     QualityPort3200,
			Tags:        []string{"orders", "ticket", "entry"},
			DefaultSize: domain.GridSize{W: 3, H: 4},
			MinSize:     domain.GridSize{W: 2, H: 3},
		},
		{
			ID: "news-feed", Name: "news-feed", DisplayName: "News Feed",
			Description: "Scrolling market news headlines filtered by watchlist symbols",
			Category:    "news", Complexity: "simple",
			Quality:     QualityBasic,
			Tags:        []string{"news", "headlines", "feed"},
			DefaultSize: domain.GridSize{W: 3, H: 4},
		},
		{
			ID: "market-heatmap", Name: "market-heatmap", DisplayName: "Market Heatmap",
			Description: "Sector heatmap coloured by intraday performance",
			Category:    "market-data", Subcategory: "overview", Complexity: "moderate",
			Quality:     QualityEnhanced,
			Tags:        []string{"heatmap", "sectors", "overview"},
			DefaultSize: domain.GridSize{W: 4, H: 4},
		},
		{
			ID: "volatility-surface", Name: "volatility-surface", DisplayName: "Volatility Surface",
			Description: "Implied volatility surface across strikes and expiries",
			Category:    "analytics", Subcategory: "options", Complexity: "complex",
			Quality:     QualityPort3200,
			Tags:        []string{"volatility", "options", "surface", "chart"},
			DefaultSize: domain.GridSize{W: 6, H: 4},
			MinSize:     domain.GridSize{W: 4, H: 3},
		},
		{
			ID: "watchlist", Name: "watchlist", DisplayName: "Watchlist",
			Description: "User-curated symbol list with last price and change",
			Category:    "market-data", Subcategory: "quotes", Complexity: "simple",
			Quality:     QualityPort3000,
			Tags:        []string{"watchlist", "symbols", "quotes"},
			DefaultSize: domain.GridSize{W: 3, H: 4},
			MinSize:     domain.GridSize{W: 2, H: 2},
		},
		{
			ID: "fx-matrix", Name: "fx-matrix", DisplayName: "FX Matrix",
			Description: "Cross-currency rate matrix for major pairs",
			Category:    "market-data", Subcategory: "rates", Complexity: "moderate",
			Quality:     QualityBasic,
			Tags:        []string{"fx", "matrix", "rates", "crosses"},
			DefaultSize: domain.GridSize{W: 4, H: 3},
		},
		{
			ID: "yield-curve", Name: "yield-curve", DisplayName: "Yield Curve",
			Description: "Government yield curve chart with historical comparison",
			Category:    "analytics", Subcategory: "fixed-income", Complexity: "moderate",
			Quality:     QualityEnhanced,
			Tags:        []string{"rates", "bonds", "curve", "chart"},
			DefaultSize: domain.GridSize{W: 4, H: 3},
		},
		{
			ID: "pnl-summary", Name: "pnl-summary", DisplayName: "P&L Summary",
			Description: "Realised and unrealised profit and loss summary cards",
			Category:    "portfolio", Subcategory: "performance", Complexity: "simple",
			Quality:     QualityEnhanced,
			Tags:        []string{"pnl", "performance", "summary"},
			DefaultSize: domain.GridSize{W: 3, H: 2},
		},
		{
			ID: "alert-center", Name: "alert-center", DisplayName: "Alert Center",
			Description: "Price and volume alert management with trigger history",
			Category:    "tools", Subcategory: "alerts", Complexity: "moderate",
			Quality:     QualityBasic,
			Tags:        []string{"alerts", "notifications", "triggers"},
			DefaultSize: domain.GridSize{W: 3, H: 3},
		},
		{
			ID: "economic-calendar", Name: "economic-calendar", DisplayName: "Economic Calendar",
			Description: "Upcoming economic releases with expected and prior values",
			Category:    "news", Subcategory: "calendar", Complexity: "simple",
			Quality:     QualityBasic,
			Tags:        []string{"calendar", "macro", "events"},
			DefaultSize: domain.GridSize{W: 4, H: 3},
		},
		{
			ID: "scratch-notes", Name: "scratch-notes", DisplayName: "Scratch Notes",
			Description: "Free-form notes panel persisted per layout",
			Category:    "tools", Subcategory: "notes", Complexity: "simple",
			Quality:     QualityBasic,
			Tags:        []string{"notes", "text"},
			DefaultSize: domain.GridSize{W: 2, H: 2},
		},
	}
}
