package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed schedule.yaml
var scheduleYAML []byte

type Config struct {
	Backend     BackendConfig
	Camera      CameraConfig
	Recognition RecognitionConfig
	Attendance  AttendanceConfig
	Security    SecurityConfig
	Storage     StorageConfig
	Database    DatabaseConfig
	Webhook     WebhookConfig
	Web         WebConfig
}

type BackendConfig struct {
	URL     string        // base API URL of the timecard backend
	Timeout time.Duration // per-request timeout for the reporter
}

type CameraConfig struct {
	Index        int // device index passed to the capture backend
	FrameWidth   int
	FrameHeight  int
	ProcessEvery int // process every Nth frame, 1 = every frame
}

type RecognitionConfig struct {
	Tolerance float64 // maximum face distance that counts as a match, lower = stricter
	ModelsDir string  // directory with the dlib model files
}

type AttendanceConfig struct {
	Cooldown        time.Duration // minimum time between events for the same employee
	WorkStart       string        // "HH:MM", empty disables the work-hours gate
	WorkEnd         string
	AllowAfterHours bool
}

type SecurityConfig struct {
	MaxFailedAttempts int // unknown sightings per hour before lockout, 0 disables
	LockoutTime       time.Duration
	SaveUnknownFaces  bool
}

type StorageConfig struct {
	DataDir       string // encodings file, backups
	PhotosDir     string // registration photos, unknown faces
	MaxBackups    int
	EncodingsFile string
}

type DatabaseConfig struct {
	URL          string // DSN for the backend store
	Driver       string // "postgres" or "mysql"
	MaxOpenConns int
	MaxIdleConns int
}

type WebhookConfig struct {
	URL string // optional notification webhook, empty disables

	NotifyFirstEntry     bool
	NotifyLateArrival    bool
	NotifyEarlyDeparture bool
	NotifyUnknownFace    bool
	LateArrivalAfter     string
	EarlyDepartureBefore string
}

type WebConfig struct {
	Host string
	Port int
}

// schedule mirrors the embedded schedule.yaml structure.
type schedule struct {
	WorkHours struct {
		Start           string `yaml:"start"`
		End             string `yaml:"end"`
		AllowAfterHours bool   `yaml:"allow_after_hours"`
	} `yaml:"work_hours"`
	Notifications struct {
		OnFirstEntry         bool   `yaml:"on_first_entry"`
		OnLateArrival        bool   `yaml:"on_late_arrival"`
		OnEarlyDeparture     bool   `yaml:"on_early_departure"`
		OnUnknownFace        bool   `yaml:"on_unknown_face"`
		LateArrivalAfter     string `yaml:"late_arrival_after"`
		EarlyDepartureBefore string `yaml:"early_departure_before"`
	} `yaml:"notifications"`
}

// envParser reads environment variables and collects parse errors so Load
// can fail at startup instead of silently running on defaults the operator
// never chose.
type envParser struct {
	errs []error
}

func (p *envParser) fail(key, value, want string) {
	p.errs = append(p.errs, fmt.Errorf("%s must be %s, got %q", key, want, value))
}

// Int reads an environment variable as an integer.
func (p *envParser) Int(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		p.fail(key, s, "an integer")
		return defaultVal
	}
	return n
}

// Float reads an environment variable as a float64.
func (p *envParser) Float(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.fail(key, s, "a number")
		return defaultVal
	}
	return f
}

// Bool reads an environment variable as a boolean ("true"/"1"/"false"/"0").
func (p *envParser) Bool(key string, defaultVal bool) bool {
	switch os.Getenv(key) {
	case "":
		return defaultVal
	case "true", "1":
		return true
	case "false", "0":
		return false
	default:
		p.fail(key, os.Getenv(key), "true or false")
		return defaultVal
	}
}

// Seconds reads an environment variable as a non-negative number of seconds.
func (p *envParser) Seconds(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		p.fail(key, s, "a non-negative number of seconds")
		return defaultVal
	}
	return time.Duration(n) * time.Second
}

// envString reads an environment variable with a fallback default.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// Load reads the configuration from the environment. A value that does not
// parse is a startup error, never a silent fallback to the default.
func Load() (*Config, error) {
	var sched schedule
	if err := yaml.Unmarshal(scheduleYAML, &sched); err != nil {
		// Embedded file, this should never happen in practice.
		panic("failed to unmarshal embedded schedule.yaml: " + err.Error())
	}

	dataDir := envString("DATA_DIR", "data")
	p := &envParser{}

	cfg := &Config{
		Backend: BackendConfig{
			URL:     envString("BACKEND_URL", "http://localhost:8080/api"),
			Timeout: p.Seconds("BACKEND_TIMEOUT", 10*time.Second),
		},
		Camera: CameraConfig{
			Index:        p.Int("CAMERA_INDEX", 0),
			FrameWidth:   p.Int("FRAME_WIDTH", 640),
			FrameHeight:  p.Int("FRAME_HEIGHT", 480),
			ProcessEvery: p.Int("PROCESS_EVERY_N_FRAMES", 2),
		},
		Recognition: RecognitionConfig{
			Tolerance: p.Float("FACE_RECOGNITION_TOLERANCE", 0.6),
			ModelsDir: envString("FACE_MODELS_DIR", "models"),
		},
		Attendance: AttendanceConfig{
			Cooldown:        p.Seconds("RECOGNITION_COOLDOWN", 10*time.Second),
			WorkStart:       envString("WORK_START_TIME", sched.WorkHours.Start),
			WorkEnd:         envString("WORK_END_TIME", sched.WorkHours.End),
			AllowAfterHours: p.Bool("ALLOW_AFTER_HOURS", sched.WorkHours.AllowAfterHours),
		},
		Security: SecurityConfig{
			MaxFailedAttempts: p.Int("MAX_FAILED_ATTEMPTS", 10),
			LockoutTime:       p.Seconds("LOCKOUT_TIME", 5*time.Minute),
			SaveUnknownFaces:  p.Bool("SAVE_UNKNOWN_FACES", false),
		},
		Storage: StorageConfig{
			DataDir:       dataDir,
			PhotosDir:     envString("PHOTOS_DIR", "employee_photos"),
			MaxBackups:    p.Int("MAX_BACKUPS", 7),
			EncodingsFile: envString("FACE_ENCODINGS_FILE", dataDir+"/face_encodings.json"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			Driver:       envString("DATABASE_DRIVER", "postgres"),
			MaxOpenConns: p.Int("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: p.Int("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Webhook: WebhookConfig{
			URL:                  os.Getenv("WEBHOOK_URL"),
			NotifyFirstEntry:     sched.Notifications.OnFirstEntry,
			NotifyLateArrival:    sched.Notifications.OnLateArrival,
			NotifyEarlyDeparture: sched.Notifications.OnEarlyDeparture,
			NotifyUnknownFace:    sched.Notifications.OnUnknownFace,
			LateArrivalAfter:     sched.Notifications.LateArrivalAfter,
			EarlyDepartureBefore: sched.Notifications.EarlyDepartureBefore,
		},
		Web: WebConfig{
			Host: envString("WEB_HOST", "0.0.0.0"),
			Port: p.Int("WEB_PORT", 8080),
		},
	}
	if len(p.errs) > 0 {
		return nil, errors.Join(p.errs...)
	}
	return cfg, nil
}

// ParseClock parses an "HH:MM" string into minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q (want HH:MM): %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Validate checks the configuration and returns the first problem found.
// Callers are expected to treat any error as fatal at startup.
func (c *Config) Validate() error {
	if c.Recognition.Tolerance < 0 || c.Recognition.Tolerance > 1 {
		return fmt.Errorf("FACE_RECOGNITION_TOLERANCE must be between 0.0 and 1.0, got %v", c.Recognition.Tolerance)
	}
	if c.Attendance.Cooldown < 0 {
		return fmt.Errorf("RECOGNITION_COOLDOWN must be >= 0, got %v", c.Attendance.Cooldown)
	}
	if c.Camera.FrameWidth <= 0 || c.Camera.FrameHeight <= 0 {
		return fmt.Errorf("frame dimensions must be positive, got %dx%d", c.Camera.FrameWidth, c.Camera.FrameHeight)
	}
	if c.Camera.ProcessEvery < 1 {
		return fmt.Errorf("PROCESS_EVERY_N_FRAMES must be >= 1, got %d", c.Camera.ProcessEvery)
	}
	if c.Attendance.WorkStart != "" && c.Attendance.WorkEnd != "" {
		start, err := ParseClock(c.Attendance.WorkStart)
		if err != nil {
			return fmt.Errorf("WORK_START_TIME: %w", err)
		}
		end, err := ParseClock(c.Attendance.WorkEnd)
		if err != nil {
			return fmt.Errorf("WORK_END_TIME: %w", err)
		}
		if start >= end {
			return fmt.Errorf("WORK_START_TIME (%s) must be before WORK_END_TIME (%s)", c.Attendance.WorkStart, c.Attendance.WorkEnd)
		}
	}
	switch c.Database.Driver {
	case "postgres", "mysql":
	default:
		return fmt.Errorf("DATABASE_DRIVER must be %q or %q, got %q", "postgres", "mysql", c.Database.Driver)
	}
	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return fmt.Errorf("WEB_PORT must be between 1 and 65535, got %d", c.Web.Port)
	}
	return nil
}
