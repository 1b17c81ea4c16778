package server

import (
	"context"
	"os"
	"path/filepath"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/crewsheet/internal/common"
	"github.com/joseph-ayodele/crewsheet/internal/entity"
)

// Client talks to a running ContactsService.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Dial opens a plaintext connection; the caller closes it.
func Dial(addr string) (*grpc.ClientConn, error) {
	return grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(maxMessageBytes), grpc.MaxCallSendMsgSize(maxMessageBytes)),
	)
}

func (c *Client) invoke(ctx context.Context, method string, req, resp any) error {
	in, err := toStruct(req)
	if err != nil {
		return err
	}
	if rid := common.RequestIDFromContext(ctx); rid != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, requestIDHeader, rid)
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(method), in, out); err != nil {
		return err
	}
	return fromStruct(out, resp)
}

func (c *Client) ExtractText(ctx context.Context, req ExtractTextRequest) (ExtractResponse, error) {
	var resp ExtractResponse
	err := c.invoke(ctx, "ExtractText", req, &resp)
	return resp, err
}

func (c *Client) ExtractFile(ctx context.Context, req ExtractFileRequest) (ExtractResponse, error) {
	var resp ExtractResponse
	err := c.invoke(ctx, "ExtractFile", req, &resp)
	return resp, err
}

// ExtractPath uploads a local file.
func (c *Client) ExtractPath(ctx context.Context, path string, opts entity.Options) (ExtractResponse, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ExtractResponse{}, err
	}
	return c.ExtractFile(ctx, ExtractFileRequest{FileName: filepath.Base(path), Content: data, Options: opts})
}

func (c *Client) Classify(ctx context.Context, req ClassifyRequest) (ClassifyResponse, error) {
	var resp ClassifyResponse
	err := c.invoke(ctx, "Classify", req, &resp)
	return resp, err
}

func (c *Client) GetRun(ctx context.Context, id string) (RunResponse, error) {
	var resp RunResponse
	err := c.invoke(ctx, "GetRun", RunRequest{ID: id}, &resp)
	return resp, err
}

func (c *Client) ListRuns(ctx context.Context, limit int) (ListRunsResponse, error) {
	var resp ListRunsResponse
	err := c.invoke(ctx, "ListRuns", ListRunsRequest{Limit: limit}, &resp)
	return resp, err
}

func (c *Client) ExportRun(ctx context.Context, id string) (ExportRunResponse, error) {
	var resp ExportRunResponse
	err := c.invoke(ctx, "ExportRun", RunRequest{ID: id}, &resp)
	return resp, err
}
