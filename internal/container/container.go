package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-clinic-scheduler/config"
	"github.com/oksasatya/go-clinic-scheduler/internal/application"
	"github.com/oksasatya/go-clinic-scheduler/internal/domain/repository"
	"github.com/oksasatya/go-clinic-scheduler/pkg/helpers"
)

// app-level container to share constructed components across packages.
// Router wires modules from these singletons. Optional backends stay nil
// when not configured.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	gcsClient   *storage.Client
	rabbitPub   *helpers.RabbitPublisher
	esClient    *elasticsearch.Client

	clock        application.Clock
	locker       repository.Locker
	ids          repository.IDAllocator
	patients     repository.PatientRepository
	doctors      repository.DoctorRepository
	appointments repository.AppointmentRepository
	cancelTokens *helpers.CancelTokenManager
)

func SetConfig(c *config.Config) { cfg = c }
func GetConfig() *config.Config  { return cfg }
func SetLogger(l *logrus.Logger) { logger = l }
func GetLogger() *logrus.Logger  { return logger }
func SetPGPool(p *pgxpool.Pool)  { pgPool = p }
func GetPGPool() *pgxpool.Pool   { return pgPool }
func SetRedis(r *redis.Client)   { redisClient = r }
func GetRedis() *redis.Client    { return redisClient }
func SetGCS(s *storage.Client)   { gcsClient = s }
func GetGCS() *storage.Client    { return gcsClient }

func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
func SetES(c *elasticsearch.Client)           { esClient = c }
func GetES() *elasticsearch.Client            { return esClient }

func SetClock(c application.Clock)            { clock = c }
func GetClock() application.Clock             { return clock }
func SetLocker(l repository.Locker)           { locker = l }
func GetLocker() repository.Locker            { return locker }
func SetIDAllocator(a repository.IDAllocator) { ids = a }
func GetIDAllocator() repository.IDAllocator  { return ids }

func SetCancelTokens(m *helpers.CancelTokenManager) { cancelTokens = m }
func GetCancelTokens() *helpers.CancelTokenManager  { return cancelTokens }

// SetRepositories installs the storage driver chosen at startup.
func SetRepositories(p repository.PatientRepository, d repository.DoctorRepository, a repository.AppointmentRepository) {
	patients, doctors, appointments = p, d, a
}

func GetPatients() repository.PatientRepository         { return patients }
func GetDoctors() repository.DoctorRepository           { return doctors }
func GetAppointments() repository.AppointmentRepository { return appointments }
