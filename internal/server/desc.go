package server

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const serviceName = "crewsheet.v1.ContactsService"

// Messages travel as google.protobuf.Struct; request and response shapes
// are the JSON forms of the types in messages.go.
type ContactsServiceServer interface {
	ExtractText(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExtractFile(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Classify(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRun(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListRuns(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExportRun(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(ContactsServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func fullMethod(name string) string {
	return "/" + serviceName + "/" + name
}

func methodDesc(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ContactsServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(ContactsServiceServer), ctx, req.(*structpb.Struct))
			})
		},
	}
}

var ContactsServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ContactsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		methodDesc("ExtractText", ContactsServiceServer.ExtractText),
		methodDesc("ExtractFile", ContactsServiceServer.ExtractFile),
		methodDesc("Classify", ContactsServiceServer.Classify),
		methodDesc("GetRun", ContactsServiceServer.GetRun),
		methodDesc("ListRuns", ContactsServiceServer.ListRuns),
		methodDesc("ExportRun", ContactsServiceServer.ExportRun),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "crewsheet/v1/contacts.proto",
}

func RegisterContactsServiceServer(s grpc.ServiceRegistrar, srv ContactsServiceServer) {
	s.RegisterService(&ContactsServiceDesc, srv)
}

func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return structpb.NewStruct(m)
}

func fromStruct(in *structpb.Struct, v any) error {
	b, err := json.Marshal(in.AsMap())
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
