/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package registry

// legacyComponentIDs maps ids that shipped in earlier releases to their
// current canonical form. Persisted layouts are rewritten on load; the
// mapping stays here so old exports keep importing cleanly. Targets must be
// canonical ids, never another legacy id.
var legacyComponentIDs = map[string]string{
	"fx-rates":        "live-rates",
	"spot-rates":      "live-rates",
	"ohlc-chart":      "candle-chart",
	"positions-table": "portfolio-grid",
	"blotter":         "order-blotter",
	"vol-surface":     "volatility-surface",
	"news-ticker":     "news-feed",
}
