package chart

// ViewModel is everything the presentation layer needs to draw a chart.
// Trend is nil when there is not enough data to estimate it.
type ViewModel struct {
	Window     Window           `json:"window"`
	Slots      []DaySlot        `json:"slots"`
	Duplicates []DuplicateGroup `json:"duplicates"`
	Trend      *TrendSummary    `json:"trend"`
	Direction  Direction        `json:"direction,omitempty"`
}

func Assemble(
	window Window,
	slots []DaySlot,
	duplicates []DuplicateGroup,
	trend *TrendSummary,
) ViewModel {
	if slots == nil {
		slots = make([]DaySlot, 0)
	}
	if duplicates == nil {
		duplicates = make([]DuplicateGroup, 0)
	}

	vm := ViewModel{
		Window:     window,
		Slots:      slots,
		Duplicates: duplicates,
		Trend:      trend,
	}
	if trend != nil {
		vm.Direction = trend.Direction()
	}

	return vm
}

// HasData reports whether at least one day of the series holds a value.
func (vm ViewModel) HasData() bool {
	for _, s := range vm.Slots {
		if s.HasValue() {
			return true
		}
	}
	return false
}
