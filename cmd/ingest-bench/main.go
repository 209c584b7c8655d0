// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

/*
ingest-bench drives ingest/patsrc end to end over real input files: it
builds a composer from the given file lists, spawns -nthreads concurrent
drivers, and reports the total reads and pairs ingested along with any
diagnostics raised. It exists to exercise the concurrent path with a real
OS thread pool rather than only from unit tests.
*/

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/ingest/ingest/diag"
	"github.com/grailbio/ingest/ingest/fileio"
	"github.com/grailbio/ingest/ingest/patsrc"
	"github.com/grailbio/ingest/ingest/verify"
)

var (
	formatFlag   = flag.String("format", "fastq", "Input format: fasta, fastq, fastq-interleaved, tab5, tab6, qseq, raw, fasta-continuous")
	m1Flag       = flag.String("m1", "", "Comma-separated left-mate files (pairs with -m2)")
	m2Flag       = flag.String("m2", "", "Comma-separated right-mate files (pairs with -m1)")
	m12Flag      = flag.String("m12", "", "Comma-separated interleaved-pair files")
	fileParallel = flag.Bool("file-parallel", false, "Wrap each input file in its own source instead of round-robining one source list")
	seed         = flag.Uint64("seed", 0, "PRNG seed threaded through to downstream consumers")
	maxBuf       = flag.Int("max-buf", 256, "Batch capacity: reads buffered per lock acquisition")
	solexa64     = flag.Bool("solexa64", false, "Quality strings are Solexa+64 encoded")
	phred64      = flag.Bool("phred64", false, "Quality strings are Phred+64 encoded")
	intQuals     = flag.Bool("int-quals", false, "Quality strings are space-separated integers")
	trim5        = flag.Int("trim5", 0, "Bases to clip from the 5' end after decode")
	trim3        = flag.Int("trim3", 0, "Bases to clip from the 3' end after decode")
	sampleLen    = flag.Int("sample-len", 32, "FASTA-Continuous window length (<= 1024)")
	sampleFreq   = flag.Int("sample-freq", 1, "FASTA-Continuous window stride (>= 1)")
	skip         = flag.Uint64("skip", 0, "Reads to discard at stream startup before any id is issued")
	nthreads     = flag.Int("nthreads", 4, "Number of concurrent drivers")
	fixName      = flag.Bool("fix-name", false, "Strip /1, /2 mate suffixes from read names")
	backendFlag  = flag.String("backend", "auto", "File backend: auto, mmap, zlibng")
	doVerify     = flag.Bool("verify", false, "Record every yielded read's id in a verify.IDLedger and check the ids are contiguous at the end")
)

func ingestBenchUsage() {
	fmt.Printf("Usage: %s [OPTIONS] file1 file2 ...\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func parseFormat(s string) patsrc.Format {
	switch s {
	case "fasta":
		return patsrc.FormatFASTA
	case "fastq":
		return patsrc.FormatFASTQ
	case "fastq-interleaved":
		return patsrc.FormatFASTQInterleaved
	case "tab5":
		return patsrc.FormatTabbed5
	case "tab6":
		return patsrc.FormatTabbed6
	case "qseq":
		return patsrc.FormatQseq
	case "raw":
		return patsrc.FormatRaw
	case "fasta-continuous":
		return patsrc.FormatFastaContinuous
	default:
		log.Fatalf("unknown -format %q", s)
		panic("unreachable")
	}
}

func parseBackend(s string) fileio.Backend {
	switch s {
	case "auto":
		return fileio.BackendAuto
	case "mmap":
		return fileio.BackendMmap
	case "zlibng":
		return fileio.BackendZlibNG
	default:
		log.Fatalf("unknown -backend %q", s)
		panic("unreachable")
	}
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// logSink adapts ingest/diag.Sink to grailbio/base/log, so diagnostics show
// up on the console the way every other tool in this repo reports errors.
type logSink struct{}

func (logSink) Warn(w diag.Warning) { log.Error.Printf("%v", w) }
func (logSink) Fatal(f diag.Fatal)  { log.Error.Printf("%v", f) }

func main() {
	flag.Usage = ingestBenchUsage
	shutdown := grail.Init()
	defer shutdown()

	singles := flag.Args()
	m1 := splitCSV(*m1Flag)
	m2 := splitCSV(*m2Flag)
	m12 := splitCSV(*m12Flag)

	if len(singles) == 0 && len(m1) == 0 && len(m12) == 0 {
		log.Fatalf("no input files given: pass positional files, or -m1/-m2, or -m12")
	}

	sink := diag.Sink(logSink{})
	params := patsrc.Params{
		Format:       parseFormat(*formatFlag),
		FileParallel: *fileParallel,
		Seed:         uint32(*seed),
		MaxBuf:       *maxBuf,
		Solexa64:     *solexa64,
		Phred64:      *phred64,
		IntQuals:     *intQuals,
		Trim5:        *trim5,
		Trim3:        *trim3,
		SampleLen:    *sampleLen,
		SampleFreq:   *sampleFreq,
		Skip:         *skip,
		Nthreads:     *nthreads,
		FixName:      *fixName,
		Backend:      parseBackend(*backendFlag),
		Sink:         sink,
	}

	composer := patsrc.NewComposer(patsrc.Inputs{
		Singles:     singles,
		Mate1:       m1,
		Mate2:       m2,
		Interleaved: m12,
	}, params)

	var ledger *verify.IDLedger
	var ledgerMu sync.Mutex
	if *doVerify {
		ledger = verify.NewIDLedger()
	}

	var reads, pairs uint64
	var wg sync.WaitGroup
	for i := 0; i < *nthreads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			driver := patsrc.NewPerThreadDriver(composer, *maxBuf)
			for {
				ra, rb, ok := driver.Next()
				if !ok {
					return
				}
				atomic.AddUint64(&reads, 1)
				if rb != nil {
					atomic.AddUint64(&pairs, 1)
				}
				if ledger != nil {
					ledgerMu.Lock()
					if err := ledger.Reserve(ra.ID, 1); err != nil {
						log.Error.Printf("%v", err)
					}
					ledgerMu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	if ledger != nil {
		if err := ledger.Verify(); err != nil {
			log.Error.Printf("id ledger: %v", err)
		} else {
			log.Printf("id ledger: %d contiguous reservations verified", ledger.Len())
		}
	}

	log.Printf("ingested %d reads (%d pairs)", reads, pairs)
}
