package services

import (
	"fmt"
	"sort"

	"rentdash/internal/core"
)

// Selection is the set of cities the page was asked to show.
type Selection struct {
	All    bool     // no filter submitted, every city is selected
	Cities []string // submitted cities, when All is false
}

// AllCities selects every city of the dataset.
func AllCities() Selection { return Selection{All: true} }

// Resolve returns the selected cities that exist in available, in available
// order and without duplicates.
func (s Selection) Resolve(available []string) []string {
	if s.All {
		return append([]string{}, available...)
	}
	want := make(map[string]struct{}, len(s.Cities))
	for _, c := range s.Cities {
		want[c] = struct{}{}
	}
	out := []string{}
	for _, c := range available {
		if _, ok := want[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Panel IDs, in page order.
const (
	PanelRentByCity          = "rent-by-city"
	PanelTotalByCity         = "total-by-city"
	PanelBathroomsVsRent     = "bathrooms-vs-rent"
	PanelTaxByCity           = "tax-by-city"
	PanelFurnitureShare      = "furniture-share"
	PanelAnimalsByCity       = "animals-by-city"
	PanelRentByAnimal        = "rent-by-animal"
	PanelHOAByCity           = "hoa-by-city"
	PanelFurnishedByCity     = "furnished-by-city"
	PanelCostComparison      = "cost-comparison"
	PanelFireInsuranceByCity = "fire-insurance-by-city"
)

const (
	labelCity          = "Cidade"
	labelRent          = "Aluguel (R$)"
	labelTotal         = "Total (R$)"
	labelPropertyTax   = "IPTU (R$)"
	labelHOA           = "Condomínio (R$)"
	labelFireInsurance = "Seguro Incêndio (R$)"
	labelBathrooms     = "Banheiros"
	labelAnimal        = "Aceita Animais"
	labelCount         = "Quantidade"
	labelValue         = "Valor (R$)"
	labelFurnished     = "Mobiliados"
)

// BuildDashboard filters all by the selected cities and builds every panel
// and insight from the result. Cities unknown to the dataset are ignored.
func BuildDashboard(all core.Listings, selected []string) core.Dashboard {
	cities := all.Cities()
	resolved := Selection{Cities: selected}.Resolve(cities)
	filtered := all.FilterByCity(resolved)

	return core.Dashboard{
		Cities:    cities,
		Selected:  resolved,
		Rows:      len(filtered),
		TotalRows: len(all),
		Panels:    buildPanels(filtered),
		Insights:  buildInsights(filtered),
	}
}

func buildPanels(ls core.Listings) []core.Panel {
	return []core.Panel{
		boxPanel(PanelRentByCity, "Aluguel por Cidade", "Distribuição do Aluguel por Cidade",
			labelCity, labelRent, boxesBy(ls, core.City, core.Rent)),
		boxPanel(PanelTotalByCity, "Total de Despesas por Cidade", "Distribuição das Despesas Totais",
			labelCity, labelTotal, boxesBy(ls, core.City, core.Total)),
		{
			ID:      PanelBathroomsVsRent,
			Heading: "Banheiros vs. Aluguel",
			Title:   "Correlação entre Banheiros e Aluguel",
			Kind:    core.PanelScatter,
			XLabel:  labelBathrooms,
			YLabel:  labelRent,
			Series:  bathroomRentSeries(ls),
		},
		boxPanel(PanelTaxByCity, "IPTU por Cidade", "Distribuição do IPTU",
			labelCity, labelPropertyTax, boxesBy(ls, core.City, core.PropertyTax)),
		{
			ID:      PanelFurnitureShare,
			Heading: "Imóveis Mobiliados vs. Não Mobiliados",
			Title:   "Comparação de Mobiliados",
			Kind:    core.PanelPie,
			Slices:  pieSlices(ls.CountBy(core.Furniture), len(ls)),
		},
		animalsByCity(ls),
		boxPanel(PanelRentByAnimal, "Aluguel vs. Aceitação de Animais", "Correlação entre Aluguel e Animais",
			labelAnimal, labelRent, boxesBy(ls, core.Animal, core.Rent)),
		boxPanel(PanelHOAByCity, "Condomínio por Cidade", "Taxa de Condomínio",
			labelCity, labelHOA, boxesBy(ls, core.City, core.HOA)),
		furnishedByCity(ls),
		boxPanel(PanelCostComparison, "Comparação de Aluguel, Condomínio e IPTU", "Comparação de Valores",
			"", labelValue, costComparison(ls)),
		boxPanel(PanelFireInsuranceByCity, "Seguro Incêndio por Cidade", "Seguro Incêndio por Cidade",
			labelCity, labelFireInsurance, boxesBy(ls, core.City, core.FireInsurance)),
	}
}

func boxPanel(id, heading, title, xLabel, yLabel string, boxes []core.BoxGroup) core.Panel {
	return core.Panel{
		ID:      id,
		Heading: heading,
		Title:   title,
		Kind:    core.PanelBox,
		XLabel:  xLabel,
		YLabel:  yLabel,
		Boxes:   boxes,
	}
}

func boxesBy(ls core.Listings, key func(core.Listing) string, field func(core.Listing) float64) []core.BoxGroup {
	keys, values := ls.GroupValues(key, field)
	out := make([]core.BoxGroup, len(keys))
	for i, k := range keys {
		out[i] = core.BoxGroup{Label: k, Summary: core.Summarize(values[i])}
	}
	return out
}

func costComparison(ls core.Listings) []core.BoxGroup {
	if len(ls) == 0 {
		return nil
	}
	return []core.BoxGroup{
		{Label: "Aluguel", Summary: core.Summarize(ls.Values(core.Rent))},
		{Label: "Condomínio", Summary: core.Summarize(ls.Values(core.HOA))},
		{Label: "IPTU", Summary: core.Summarize(ls.Values(core.PropertyTax))},
	}
}

func bathroomRentSeries(ls core.Listings) []core.ScatterSeries {
	idx := make(map[string]int)
	var out []core.ScatterSeries
	for _, l := range ls {
		i, ok := idx[l.City]
		if !ok {
			i = len(out)
			idx[l.City] = i
			out = append(out, core.ScatterSeries{Label: l.City})
		}
		out[i].Points = append(out[i].Points, core.Point{X: float64(l.Bathrooms), Y: l.Rent})
	}
	return out
}

// pieSlices orders slices by count, largest first; ties keep first
// appearance.
func pieSlices(counts []core.Count, total int) []core.Slice {
	out := make([]core.Slice, 0, len(counts))
	for _, c := range counts {
		out = append(out, core.Slice{
			Label:   c.Key,
			Count:   c.Count,
			Percent: 100 * float64(c.Count) / float64(total),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// animalsByCity cross-tabulates city by animal acceptance, both sorted by
// name. Combinations without listings count as zero.
func animalsByCity(ls core.Listings) core.Panel {
	p := core.Panel{
		ID:      PanelAnimalsByCity,
		Heading: "Aceitação de Animais por Cidade",
		Title:   "Aceitação de Animais",
		Kind:    core.PanelStackedBar,
		XLabel:  labelCity,
		YLabel:  labelCount,
	}
	if len(ls) == 0 {
		return p
	}
	p.Categories = sortedKeys(ls.CountBy(core.City))
	cityIdx := make(map[string]int, len(p.Categories))
	for i, c := range p.Categories {
		cityIdx[c] = i
	}
	animals := sortedKeys(ls.CountBy(core.Animal))
	animalIdx := make(map[string]int, len(animals))
	for j, a := range animals {
		animalIdx[a] = j
		p.Bars = append(p.Bars, core.BarSeries{Label: a, Values: make([]float64, len(p.Categories))})
	}
	for _, l := range ls {
		p.Bars[animalIdx[l.Animal]].Values[cityIdx[l.City]]++
	}
	return p
}

func sortedKeys(counts []core.Count) []string {
	keys := make([]string, len(counts))
	for i, c := range counts {
		keys[i] = c.Key
	}
	sort.Strings(keys)
	return keys
}

// furnishedByCity counts furnished listings per city, sorted by city name.
// Cities without any furnished listing are left out.
func furnishedByCity(ls core.Listings) core.Panel {
	p := core.Panel{
		ID:      PanelFurnishedByCity,
		Heading: "Imóveis Mobiliados por Cidade",
		Title:   "Imóveis Mobiliados por Cidade",
		Kind:    core.PanelBar,
		XLabel:  labelCity,
		YLabel:  labelCount,
	}
	counts := ls.Where(core.Listing.IsFurnished).CountBy(core.City)
	sort.Slice(counts, func(i, j int) bool { return counts[i].Key < counts[j].Key })
	if len(counts) == 0 {
		return p
	}
	bar := core.BarSeries{Label: labelFurnished, Values: make([]float64, len(counts))}
	for i, c := range counts {
		p.Categories = append(p.Categories, c.Key)
		bar.Values[i] = float64(c.Count)
	}
	p.Bars = []core.BarSeries{bar}
	return p
}

type cityStat struct {
	city  string
	value float64
}

// rankCities returns one statistic per city, highest first, ties by name.
func rankCities(ls core.Listings, stat func(core.Listings) float64) []cityStat {
	var out []cityStat
	for _, c := range ls.Cities() {
		city := c
		out = append(out, cityStat{city: city, value: stat(ls.Where(func(l core.Listing) bool { return l.City == city }))})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].value != out[j].value {
			return out[i].value > out[j].value
		}
		return out[i].city < out[j].city
	})
	return out
}

func medianOf(field func(core.Listing) float64) func(core.Listings) float64 {
	return func(ls core.Listings) float64 { return core.Summarize(ls.Values(field)).Median }
}

func furnishedShare(ls core.Listings) float64 {
	return 100 * float64(len(ls.Where(core.Listing.IsFurnished))) / float64(len(ls))
}

func buildInsights(ls core.Listings) []core.Insight {
	if len(ls) == 0 {
		return nil
	}
	var out []core.Insight

	rent := rankCities(ls, medianOf(core.Rent))
	hi, lo := rent[0], rent[len(rent)-1]
	text := fmt.Sprintf("%s tem a maior mediana de aluguel (%s).", hi.city, core.FormatBRL(hi.value))
	if len(rent) > 1 {
		text = fmt.Sprintf("%s tem a maior mediana de aluguel (%s) e %s a menor (%s).",
			hi.city, core.FormatBRL(hi.value), lo.city, core.FormatBRL(lo.value))
	}
	out = append(out, core.Insight{Label: "Aluguel", Text: text})

	hoa := rankCities(ls, medianOf(core.HOA))
	text = fmt.Sprintf("A mediana do condomínio em %s é %s.", hoa[0].city, core.FormatBRL(hoa[0].value))
	if len(hoa) > 1 {
		last := hoa[len(hoa)-1]
		text = fmt.Sprintf("A mediana do condomínio varia de %s (%s) a %s (%s).",
			core.FormatBRL(last.value), last.city, core.FormatBRL(hoa[0].value), hoa[0].city)
	}
	out = append(out, core.Insight{Label: "Condomínio", Text: text})

	keys, values := ls.GroupValues(core.Animal, core.Rent)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, core.FormatBRL(core.Summarize(values[i]).IQR()))
	}
	out = append(out, core.Insight{
		Label: "Animais",
		Text:  "Amplitude interquartil do aluguel por aceitação de animais: " + joinPT(parts) + ".",
	})

	share := rankCities(ls, furnishedShare)
	out = append(out, core.Insight{
		Label: "Mobília",
		Text:  fmt.Sprintf("%s tem a maior proporção de imóveis mobiliados (%.0f%%).", share[0].city, share[0].value),
	})

	return out
}

// joinPT joins items with commas and a final "e".
func joinPT(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	out := items[0]
	for _, s := range items[1 : len(items)-1] {
		out += ", " + s
	}
	return out + " e " + items[len(items)-1]
}
