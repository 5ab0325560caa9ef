package record

// Field-name aliases per entity type, consulted in declaration order. Keeping
// the alias policy here makes it auditable and testable in one place instead
// of spreading fallback chains through the merge code.

// Driver field aliases.
var (
	DriverNameKeys   = []string{"name", "full_name"}
	DriverCodeKeys   = []string{"code", "driver_code"}
	DriverNumberKeys = []string{"number", "driver_number"}
	DriverRefKeys    = []string{"driver_ref", "driverRef"}
	DriverDOBKeys    = []string{"date_of_birth", "dob", "dateOfBirth"}
	DriverIDKeys     = []string{"id", "driver_id", "driverId"}
	NationalityKeys  = []string{"nationality"}
)

// Constructor field aliases.
var (
	ConstructorNameKeys = []string{"name"}
	ConstructorRefKeys  = []string{"constructor_ref", "constructorRef"}
	ConstructorIDKeys   = []string{"id", "constructor_id", "constructorId"}
)

// Race field aliases.
var (
	RaceYearKeys    = []string{"year", "season"}
	RaceRoundKeys   = []string{"round"}
	RaceNameKeys    = []string{"name", "raceName", "race_name"}
	RaceDateKeys    = []string{"date"}
	RaceCircuitKeys = []string{"circuit_ref", "circuitId", "circuit"}
	RaceIDKeys      = []string{"id", "race_id", "raceId"}
)

// Result field aliases.
var (
	ResultDriverKeys   = []string{"driver_id", "driverId"}
	ResultRaceKeys     = []string{"race_id", "raceId"}
	ResultPositionKeys = []string{"position"}
	ResultPointsKeys   = []string{"points"}
	ResultStatusKeys   = []string{"status"}
	ResultLapsKeys     = []string{"laps"}
	ResultTimeKeys     = []string{"time"}
)
