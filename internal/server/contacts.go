package server

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/crewsheet/internal/common"
	"github.com/joseph-ayodele/crewsheet/internal/entity"
	"github.com/joseph-ayodele/crewsheet/internal/pipeline"
	"github.com/joseph-ayodele/crewsheet/internal/repository"
)

type Processor interface {
	ProcessText(ctx context.Context, name, text string, opts entity.Options) (pipeline.Outcome, error)
	ProcessBytes(ctx context.Context, name string, data []byte, opts entity.Options) (pipeline.Outcome, error)
}

type Analyzer interface {
	Analyze(text, fileName string) entity.DocumentAnalysis
}

type Exporter interface {
	ExportRunXLSX(ctx context.Context, runID uuid.UUID) ([]byte, error)
}

// ContactsServer serves extraction and stored runs over gRPC.
type ContactsServer struct {
	proc     Processor
	analyzer Analyzer
	runs     repository.ExtractionRunRepository
	exporter Exporter
	logger   *slog.Logger
}

var _ ContactsServiceServer = (*ContactsServer)(nil)

func NewContactsServer(proc Processor, analyzer Analyzer, runs repository.ExtractionRunRepository, exporter Exporter, logger *slog.Logger) *ContactsServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContactsServer{proc: proc, analyzer: analyzer, runs: runs, exporter: exporter, logger: logger}
}

func (s *ContactsServer) ExtractText(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req ExtractTextRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, common.InvalidArgumentError(err.Error())
	}
	name := req.FileName
	if name == "" {
		name = "inline.txt"
	}
	out, err := s.proc.ProcessText(ctx, name, req.Text, req.Options)
	if err != nil {
		s.logger.Error("server.extract_text.failed", "err", err)
		return nil, common.ToStatus(err)
	}
	return toStruct(ExtractResponse{RunID: out.RunID.String(), Result: out.Result})
}

func (s *ContactsServer) ExtractFile(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req ExtractFileRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, common.InvalidArgumentError(err.Error())
	}
	if strings.TrimSpace(req.FileName) == "" {
		return nil, common.InvalidArgumentError("file_name is required")
	}
	if len(req.Content) == 0 {
		return nil, common.InvalidArgumentError("content is required")
	}
	out, err := s.proc.ProcessBytes(ctx, req.FileName, req.Content, req.Options)
	if err != nil {
		s.logger.Error("server.extract_file.failed", "file", req.FileName, "err", err)
		return nil, common.ToStatus(err)
	}
	return toStruct(ExtractResponse{RunID: out.RunID.String(), Result: out.Result})
}

func (s *ContactsServer) Classify(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req ClassifyRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, common.InvalidArgumentError(err.Error())
	}
	return toStruct(ClassifyResponse{Analysis: s.analyzer.Analyze(req.Text, req.FileName)})
}

func (s *ContactsServer) GetRun(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := s.runID(in)
	if err != nil {
		return nil, err
	}
	run, err := s.runs.GetRun(ctx, id)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	contacts, err := s.runs.ListContacts(ctx, id)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return toStruct(RunResponse{Run: run, Contacts: contacts})
}

func (s *ContactsServer) ListRuns(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if s.runs == nil {
		return nil, errNoStore
	}
	var req ListRunsRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, common.InvalidArgumentError(err.Error())
	}
	runs, err := s.runs.ListRuns(ctx, req.Limit)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	if runs == nil {
		runs = []entity.ExtractionRun{}
	}
	return toStruct(ListRunsResponse{Runs: runs})
}

func (s *ContactsServer) ExportRun(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := s.runID(in)
	if err != nil {
		return nil, err
	}
	xlsx, err := s.exporter.ExportRunXLSX(ctx, id)
	if err != nil {
		s.logger.Error("server.export.failed", "run_id", id, "err", err)
		return nil, common.ToStatus(err)
	}
	return toStruct(ExportRunResponse{FileName: "contacts-" + id.String() + ".xlsx", XLSX: xlsx})
}

var errNoStore = status.Error(codes.Unavailable, "run store is not configured")

func (s *ContactsServer) runID(in *structpb.Struct) (uuid.UUID, error) {
	if s.runs == nil {
		return uuid.Nil, errNoStore
	}
	var req RunRequest
	if err := fromStruct(in, &req); err != nil {
		return uuid.Nil, common.InvalidArgumentError(err.Error())
	}
	id, err := uuid.Parse(strings.TrimSpace(req.ID))
	if err != nil {
		return uuid.Nil, common.InvalidArgumentError("id must be a UUID")
	}
	return id, nil
}
