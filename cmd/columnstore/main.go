// Column store daemon
// Runs a demo workload over an in-memory table and serves observability
// endpoints until interrupted.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/nainya/columnstore/internal/logger"
	"github.com/nainya/columnstore/internal/metrics"
	"github.com/nainya/columnstore/internal/server"
	"github.com/nainya/columnstore/pkg/database"
	"github.com/nainya/columnstore/pkg/query"
	"github.com/nainya/columnstore/pkg/table"
)

var (
	port     = flag.Int("port", 9090, "Observability HTTP port")
	logLevel = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	pretty   = flag.Bool("pretty", true, "Pretty-print logs")
	rows     = flag.Int("rows", 1000, "Rows in the demo workload")
	interval = flag.Duration("interval", 5*time.Second, "Workload repeat interval")
)

func main() {
	flag.Parse()

	logger.InitGlobalLogger(logger.Config{
		Level:  *logLevel,
		Pretty: *pretty,
	})
	log := logger.GetGlobalLogger()
	log.LogServerStart(*port)

	m := metrics.NewMetrics()

	db := database.New(table.DefaultConfig())
	tbl, err := db.CreateTable("grades", 5, 0)
	if err != nil {
		log.Fatal("failed to create table").Err(err).Send()
	}
	q := query.New(tbl)
	if err := tbl.Index().CreateIndex(1, true); err != nil {
		log.Fatal("failed to create secondary index").Err(err).Send()
	}

	// Observability server
	obs := server.NewObservabilityServer(*port, log)
	go func() {
		if err := obs.Start(); err != nil {
			log.Error("observability server stopped").Err(err).Send()
		}
	}()
	log.LogServerReady(*port)

	// Workload loop
	stop := make(chan struct{})
	go func() {
		runWorkload(q, m, int64(*rows))
		publishStats(db, tbl, m)
		ticker := time.NewTicker(*interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				runWorkload(q, m, int64(*rows))
				publishStats(db, tbl, m)
			case <-stop:
				return
			}
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	close(stop)
	log.LogServerShutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := obs.Shutdown(ctx); err != nil {
		log.Error("shutdown failed").Err(err).Send()
	}
}

// runWorkload exercises every query operation and records its outcome.
func runWorkload(q *query.Query, m *metrics.Metrics, rows int64) {
	base := q.Table().Directory().NumRecords()

	for i := int64(0); i < rows; i++ {
		pk := base + i
		timed(m, "insert", func() bool {
			return q.Insert(pk, pk%97, pk%13, pk%7, pk%5)
		})
	}
	for i := int64(0); i < rows; i += 3 {
		pk := base + i
		v := pk * 2
		timed(m, "update", func() bool {
			return q.Update(pk, nil, nil, &v, nil, nil)
		})
	}
	for i := int64(0); i < rows; i += 10 {
		pk := base + i
		timed(m, "select", func() bool {
			_, ok := q.Select(pk, 0, []int{1, 1, 1, 1, 1})
			return ok
		})
	}
	timed(m, "sum", func() bool {
		_, ok := q.Sum(base, base+rows, 2)
		return ok
	})
	for i := int64(5); i < rows; i += 50 {
		pk := base + i
		timed(m, "increment", func() bool {
			return q.Increment(pk, 4)
		})
	}
	for i := int64(7); i < rows; i += 25 {
		pk := base + i
		timed(m, "delete", func() bool {
			return q.Delete(pk)
		})
	}
}

// timed runs one operation and records its duration and status.
func timed(m *metrics.Metrics, op string, fn func() bool) {
	start := time.Now()
	status := "success"
	if !fn() {
		status = "error"
	}
	m.RecordQueryOperation(op, status, time.Since(start))
}

// publishStats pushes table and index gauges.
func publishStats(db *database.Database, tbl *table.Table, m *metrics.Metrics) {
	dir := tbl.Directory()
	m.UpdateTableStats(dir.NumRecords(), dir.NumTailRecords(), int64(db.Tables()))

	for col, s := range tbl.Index().ColumnStats() {
		if !s.Indexed && s.Usage.Point == 0 && s.Usage.Range == 0 {
			continue
		}
		m.UpdateIndexStats(strconv.Itoa(col), s.Usage.Point, s.Usage.Range, s.Entries, s.Pending)
	}
}
