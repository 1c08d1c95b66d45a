package api

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/whyumesh/zonal-election-system/api/cache"
	"github.com/whyumesh/zonal-election-system/api/controllers"
	"github.com/whyumesh/zonal-election-system/api/transport"
	"github.com/whyumesh/zonal-election-system/election"
	"github.com/whyumesh/zonal-election-system/logging"
	"github.com/whyumesh/zonal-election-system/storage"
)

type Server struct {
	config *Config
}

func NewServer(config *Config) *Server {
	return &Server{
		config: config,
	}
}

func (s *Server) Start() {
	r := transport.NewRouter(gin.DebugMode)

	// Create storage
	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		logging.Log.Errorf("failed to load AWS config: %v", err)
		panic("failed to load AWS config")
	}

	dynamoClient := dynamodb.NewFromConfig(cfg)

	electionStorage := &storage.DynamoElectionStorage{
		Client:    dynamoClient,
		TableName: s.config.TableNameElections,
	}
	zoneStorage := &storage.DynamoZoneStorage{
		Client:    dynamoClient,
		TableName: s.config.TableNameZones,
	}
	candidateStorage := &storage.DynamoCandidateStorage{
		Client:    dynamoClient,
		TableName: s.config.TableNameCandidates,
	}
	voterStorage := &storage.DynamoVoterStorage{
		Client:    dynamoClient,
		TableName: s.config.TableNameVoters,
	}
	voteStorage := &storage.DynamoVoteStorage{
		Client:         dynamoClient,
		TableName:      s.config.TableNameVotes,
		VoterTableName: s.config.TableNameVoters,
	}
	offlineVoteStorage := &storage.DynamoOfflineVoteStorage{
		Client:         dynamoClient,
		TableName:      s.config.TableNameOfflineVotes,
		VoterTableName: s.config.TableNameVoters,
	}

	var testVoter *regexp.Regexp
	if s.config.TestVoterPattern != "" {
		testVoter = regexp.MustCompile(s.config.TestVoterPattern)
	}

	service := election.NewService(electionStorage, zoneStorage, candidateStorage,
		voterStorage, voteStorage, offlineVoteStorage, testVoter)

	var resultsCache cache.ResultsCache
	if s.config.RedisAddr != "" {
		resultsCache = cache.NewRedisCache(s.config.RedisAddr,
			time.Duration(s.config.ResultsTTLSeconds)*time.Second)
	}

	//Register controllers
	votingController := controllers.NewVotingController(service)
	votingController.RegisterRoutes(r)
	offlineController := controllers.NewOfflineVotingController(service)
	offlineController.RegisterRoutes(r)
	resultsController := controllers.NewResultsController(service, electionStorage, resultsCache)
	resultsController.RegisterRoutes(r)
	adminController := controllers.NewAdminController(electionStorage, voterStorage)
	adminController.RegisterRoutes(r)
	metaZonesController := controllers.NewZoneMetaController(zoneStorage)
	metaZonesController.RegisterRoutes(r)
	metaCandidatesController := controllers.NewCandidateMetaController(candidateStorage, zoneStorage)
	metaCandidatesController.RegisterRoutes(r)

	//Do not run lambda helper locally
	if os.Getenv("APP_ENV") == "local" {
		startLocal(r, s.config.Port)
	} else {
		startLambda(r)
	}
}

// StartLambda sets up for AWS Lambda
func startLambda(engine *gin.Engine) {
	ginLambda := ginadapter.NewV2(engine)

	handler := func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		logging.Log.Infof("Lambda handler triggered on path: %s", req.RawPath)
		return ginLambda.ProxyWithContext(ctx, req)
	}

	logging.Log.Info("Starting lambda")
	lambda.Start(handler)
}

// StartLocal starts a normal HTTP server on the configured port
func startLocal(engine *gin.Engine, port int) {
	logging.Log.Info(fmt.Sprintf("Starting server on http://localhost:%d", port))

	if err := engine.Run(fmt.Sprintf(":%d", port)); err != nil {
		logging.Log.Fatalf("Failed to run server: %v", err)
	}
}
