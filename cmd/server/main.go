package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/google/uuid"

	"github.com/reilabs/provekit-go/internal/prover"
)

// main initializes and starts the proving HTTP server.
// The server provides endpoints for submitting proving jobs and polling
// their results, with configurable timeouts and CORS settings.
func main() {
	fiberConfig := fiber.Config{
		ReadTimeout:  10 * time.Minute,       // 10 min for uploading the opcode stream and witness
		WriteTimeout: 5 * time.Minute,        // response is just a job id or a status poll
		IdleTimeout:  90 * time.Minute,       // 90 min total connection time (for processing)
		BodyLimit:    2 * 1024 * 1024 * 1024, // 2GB limit (opcode stream + witness)
		Prefork:      false,
		ServerHeader: "ProveKit-Go",
		AppName:      "Prover Server",
	}

	app := fiber.New(fiberConfig)

	corsConfig := cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Content-Length, Authorization, Cookie",
		AllowMethods: "GET, POST, PUT, DELETE, PATCH",
		MaxAge:       12 * 3600,
	}
	app.Use(cors.New(corsConfig))

	queue := prover.NewQueue()

	api := app.Group("/api")
	v1 := api.Group("/v1")

	v1.Get("/ping", ping)
	v1.Post("/prove", submitProve(queue))
	v1.Get("/jobs/:id", getJob(queue))

	log.Fatal(app.Listen(":3000"))
}

func ping(c *fiber.Ctx) error {
	return c.SendString("pong")
}

// submitProve handles POST requests that start a proving job. It
// accepts the opcode stream and the witness map as multipart form
// files, each carrying the same JSON documents cmd/compile and
// cmd/prove read from disk, and returns the job id the caller polls
// via getJob.
func submitProve(queue *prover.Queue) fiber.Handler {
	return func(c *fiber.Ctx) error {
		programFile, err := getFile(c, "program")
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "missing program file", "details": err.Error()})
		}
		witnessFile, err := getFile(c, "witness")
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "missing witness file", "details": err.Error()})
		}

		var req prover.Request
		if err := json.Unmarshal(programFile, &req.Program); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "failed to unmarshal program JSON", "details": err.Error()})
		}
		if err := json.Unmarshal(witnessFile, &req.Witness); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "failed to unmarshal witness JSON", "details": err.Error()})
		}

		id := queue.Submit(req)
		return c.JSON(fiber.Map{"job_id": id.String()})
	}
}

// getJob handles GET requests polling a submitted job's status. Once
// the job is done, the response carries the proof document; if it
// failed, the error message.
func getJob(queue *prover.Queue) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid job id"})
		}

		job, ok := queue.Get(id)
		if !ok {
			return c.Status(404).JSON(fiber.Map{"error": "unknown job id"})
		}

		resp := fiber.Map{"status": job.Status}
		switch job.Status {
		case prover.StatusDone:
			resp["proof"] = job.Proof
		case prover.StatusFailed:
			resp["error"] = job.Err
		}
		return c.JSON(resp)
	}
}

func getFile(c *fiber.Ctx, name string) ([]byte, error) {
	fileHeader, err := c.FormFile(name)
	if err != nil {
		return nil, fmt.Errorf("no %s file provided: %w", name, err)
	}

	f, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file: %w", name, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("failed to close %s file: %v", name, err)
		}
	}()

	file, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s file: %w", name, err)
	}

	return file, nil
}
