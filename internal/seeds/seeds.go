package seeds

import (
	"fmt"
	"os"
	"time"

	"github.com/MuniTrack/MT-Backend/internal/db"
	"github.com/MuniTrack/MT-Backend/internal/tasks"
	"github.com/MuniTrack/MT-Backend/internal/workers"
	"github.com/MuniTrack/MT-Backend/internal/zones"
	"github.com/goccy/go-yaml"
	"github.com/lib/pq"
)

type seedFile struct {
	Zones []struct {
		Name           string    `yaml:"name"`
		MunicipalityID string    `yaml:"municipality_id"`
		Boundary       []float64 `yaml:"boundary"`
	} `yaml:"zones"`
	Workers []struct {
		FullName              string   `yaml:"full_name"`
		Role                  string   `yaml:"role"`
		MunicipalityID        string   `yaml:"municipality_id"`
		ScheduledStartMinutes int      `yaml:"scheduled_start_minutes"`
		GraceMinutes          int      `yaml:"grace_minutes"`
		Zones                 []string `yaml:"zones"`
	} `yaml:"workers"`
	Tasks []struct {
		Title       string    `yaml:"title"`
		Description string    `yaml:"description"`
		Assignee    string    `yaml:"assignee"`
		Supervisor  string    `yaml:"supervisor"`
		Zone        string    `yaml:"zone"`
		Target      []float64 `yaml:"target"`
	} `yaml:"tasks"`
}

// SeedAll loads the YAML seed file (SEED_FILE, default seeds/seed.yaml) and
// upserts zones, workers, zone assignments, and sample tasks by name.
func SeedAll() error {
	path := os.Getenv("SEED_FILE")
	if path == "" {
		path = "seeds/seed.yaml"
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file %s: %w", path, err)
	}

	var f seedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse seed file %s: %w", path, err)
	}

	zoneByName := make(map[string]zones.Zone, len(f.Zones))
	for _, z := range f.Zones {
		zone := zones.Zone{
			Name:           z.Name,
			MunicipalityID: z.MunicipalityID,
			Boundary:       pq.Float64Array(z.Boundary),
			Active:         true,
		}
		if err := db.DB.Where("name = ?", z.Name).FirstOrCreate(&zone).Error; err != nil {
			return fmt.Errorf("seed zone %s: %w", z.Name, err)
		}
		zoneByName[z.Name] = zone
	}

	workerByName := make(map[string]workers.Worker, len(f.Workers))
	for _, w := range f.Workers {
		worker := workers.Worker{
			FullName:              w.FullName,
			Role:                  w.Role,
			MunicipalityID:        w.MunicipalityID,
			ScheduledStartMinutes: w.ScheduledStartMinutes,
			GraceMinutes:          w.GraceMinutes,
			Active:                true,
		}
		if err := db.DB.Where("full_name = ?", w.FullName).FirstOrCreate(&worker).Error; err != nil {
			return fmt.Errorf("seed worker %s: %w", w.FullName, err)
		}
		workerByName[w.FullName] = worker

		for _, zoneName := range w.Zones {
			zone, ok := zoneByName[zoneName]
			if !ok {
				return fmt.Errorf("worker %s references unknown zone %s", w.FullName, zoneName)
			}
			assignment := zones.WorkerZoneAssignment{
				WorkerID:   worker.ID,
				ZoneID:     zone.ID,
				Active:     true,
				AssignedAt: time.Now(),
			}
			err := db.DB.Where("worker_id = ? AND zone_id = ?", worker.ID, zone.ID).
				FirstOrCreate(&assignment).Error
			if err != nil {
				return fmt.Errorf("seed assignment %s -> %s: %w", w.FullName, zoneName, err)
			}
		}
	}

	for _, t := range f.Tasks {
		assignee, ok := workerByName[t.Assignee]
		if !ok {
			return fmt.Errorf("task %q references unknown assignee %s", t.Title, t.Assignee)
		}
		supervisor, ok := workerByName[t.Supervisor]
		if !ok {
			return fmt.Errorf("task %q references unknown supervisor %s", t.Title, t.Supervisor)
		}

		task := tasks.Task{
			Title:        t.Title,
			Description:  t.Description,
			AssigneeID:   assignee.ID,
			SupervisorID: supervisor.ID,
			Status:       tasks.StatusPending,
		}
		if t.Zone != "" {
			zone, ok := zoneByName[t.Zone]
			if !ok {
				return fmt.Errorf("task %q references unknown zone %s", t.Title, t.Zone)
			}
			task.ZoneID = &zone.ID
		}
		if len(t.Target) == 2 {
			task.TargetLat = &t.Target[0]
			task.TargetLon = &t.Target[1]
		} else if len(t.Target) != 0 {
			return fmt.Errorf("task %q target must be a [lat, lon] pair", t.Title)
		}

		err := db.DB.Where("title = ? AND assignee_id = ?", t.Title, assignee.ID).
			FirstOrCreate(&task).Error
		if err != nil {
			return fmt.Errorf("seed task %q: %w", t.Title, err)
		}
	}

	return nil
}
