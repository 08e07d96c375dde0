package grpc

import (
	"context"

	"github.com/DRSN-tech/fashion-search/internal/usecase"
	"github.com/DRSN-tech/fashion-search/pkg/e"
	"github.com/DRSN-tech/fashion-search/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	searchServiceName     = "fashion.v1.SearchService"
	IdentifyMethod        = "/" + searchServiceName + "/Identify"
	GetSearchResultMethod = "/" + searchServiceName + "/GetSearchResult"
)

// SearchServiceServer описывает gRPC-контракт поиска на well-known типах protobuf.
type SearchServiceServer interface {
	Identify(ctx context.Context, req *wrapperspb.BytesValue) (*structpb.Struct, error)
	GetSearchResult(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
}

var SearchServiceDesc = grpc.ServiceDesc{
	ServiceName: searchServiceName,
	HandlerType: (*SearchServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Identify", Handler: identifyHandler},
		{MethodName: "GetSearchResult", Handler: getSearchResultHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fashion/v1/search.proto",
}

func identifyHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SearchServiceServer).Identify(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: IdentifyMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SearchServiceServer).Identify(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func getSearchResultHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SearchServiceServer).GetSearchResult(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetSearchResultMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SearchServiceServer).GetSearchResult(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

type SearchService struct {
	processor     usecase.ImageProcessorUC
	results       usecase.SearchResultUC
	logger        logger.Logger
	maxUploadSize int64
}

func NewSearchService(processor usecase.ImageProcessorUC, results usecase.SearchResultUC, logger logger.Logger, maxUploadSize int64) *SearchService {
	return &SearchService{
		processor:     processor,
		results:       results,
		logger:        logger,
		maxUploadSize: maxUploadSize,
	}
}

func (g *SearchService) Identify(ctx context.Context, req *wrapperspb.BytesValue) (*structpb.Struct, error) {
	const op = "grpc.Identify"

	image := req.GetValue()
	if err := validateImage(image, g.maxUploadSize); err != nil {
		g.logger.Warnf("%s: %s", op, err.Error())
		return nil, GRPCErrorResponse(err)
	}

	res, err := g.processor.ProcessImage(ctx, image)
	if err != nil {
		g.logger.Errorf(e.Wrap(op, err), "%s", op)
		return nil, GRPCErrorResponse(e.ErrProcessingFailed)
	}

	out, err := toSearchResultStruct(res)
	if err != nil {
		g.logger.Errorf(e.Wrap(op, err), "%s", op)
		return nil, GRPCErrorResponse(err)
	}

	return out, nil
}

func (g *SearchService) GetSearchResult(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	const op = "grpc.GetSearchResult"

	res, err := g.results.GetSearchResult(ctx, req.GetValue())
	if err != nil {
		g.logger.Errorf(e.Wrap(op, err), "%s", op)
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}

	out, err := toSearchResultStruct(res)
	if err != nil {
		g.logger.Errorf(e.Wrap(op, err), "%s", op)
		return nil, GRPCErrorResponse(err)
	}

	return out, nil
}
