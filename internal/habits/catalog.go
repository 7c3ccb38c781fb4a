package habits

// Kind тип привычки: ежедневная или еженедельная
type Kind int

const (
	Daily Kind = iota
	Weekly
)

// HabitCount количество отслеживаемых привычек
const HabitCount = 5

// DailyPossible — воскресенье день отдыха, поэтому 6 дней в неделю
const (
	DailyPossible  = 6
	WeeklyPossible = 1
)

// Habit описание привычки из каталога
type Habit struct {
	ID    int
	Name  string
	Short string // заголовок колонки в таблице
	Kind  Kind
}

// Possible возвращает сколько раз привычку можно засчитать за неделю
func (h Habit) Possible() int {
	if h.Kind == Weekly {
		return WeeklyPossible
	}
	return DailyPossible
}

var catalog = [HabitCount]Habit{
	{ID: 1, Name: "Prayer with first water", Short: "Prayer", Kind: Daily},
	{ID: 2, Name: "Qi Gong routine", Short: "Qi Gong", Kind: Daily},
	{ID: 3, Name: "Freestyling on the ball", Short: "Ball", Kind: Daily},
	{ID: 4, Name: "20 minute run and stretch", Short: "Run/Stretch", Kind: Weekly},
	{ID: 5, Name: "Strengthening and stretching session", Short: "Strength/Stretch", Kind: Weekly},
}

// Catalog возвращает копию каталога привычек в порядке идентификаторов
func Catalog() []Habit {
	out := make([]Habit, len(catalog))
	copy(out, catalog[:])
	return out
}

// Lookup ищет привычку по идентификатору 1..5
func Lookup(id int) (Habit, bool) {
	if id < 1 || id > HabitCount {
		return Habit{}, false
	}
	return catalog[id-1], true
}
