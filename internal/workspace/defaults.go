/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package workspace

import (
	"github.com/google/uuid"

	"gridshell/internal/domain"
)

// DefaultLayout builds the layout seeded on a user's first run: a pinned
// dynamic overview tab with a starter set of market components and an empty
// static reports tab. Ids are generated fresh per seeding.
// FallbackTab is the tab seeded when a layout would otherwise end up empty,
// so the active-tab pointer always has a target.
func FallbackTab() domain.Tab {
	return domain.Tab{
		ID:         uuid.NewString(),
		Name:       "Overview",
		Type:       domain.TabDynamic,
		Closable:   false,
		Components: []domain.ComponentInstance{},
	}
}

func DefaultLayout() domain.Layout {
	overviewID := uuid.NewString()
	return domain.Layout{
		ID:   uuid.NewString(),
		Name: "Main",
		Tabs: []domain.Tab{
			{
				ID:       overviewID,
				Name:     "Overview",
				Type:     domain.TabDynamic,
				Closable: false,
				Components: []domain.ComponentInstance{
					{
						ID:          "live-rates-seed",
						ComponentID: "live-rates",
						Grid:        &domain.GridPlacement{X: 0, Y: 0, W: 4, H: 3},
					},
					{
						ID:          "watchlist-seed",
						ComponentID: "watchlist",
						Grid:        &domain.GridPlacement{X: 4, Y: 0, W: 3, H: 4},
					},
					{
						ID:          "candle-chart-seed",
						ComponentID: "candle-chart",
						Grid:        &domain.GridPlacement{X: 0, Y: 3, W: 6, H: 4},
					},
				},
			},
			{
				ID:         uuid.NewString(),
				Name:       "Reports",
				Type:       domain.TabStatic,
				Closable:   true,
				Components: []domain.ComponentInstance{},
			},
		},
	}
}
